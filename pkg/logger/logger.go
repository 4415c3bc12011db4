// Package logger 基于 slog 的结构化日志，支持从 Context 提取请求级字段
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// ContextKey Context 中日志字段的键类型
type ContextKey string

// 请求级日志字段，由中间件写入 Context
const (
	TraceIDKey   ContextKey = "trace_id"
	SpanIDKey    ContextKey = "span_id"
	RequestIDKey ContextKey = "request_id"
	StoreIDKey   ContextKey = "store_id"
	ProductIDKey ContextKey = "product_id"
)

// contextKeys FromContext 按此顺序提取字段
var contextKeys = []ContextKey{TraceIDKey, SpanIDKey, RequestIDKey, StoreIDKey, ProductIDKey}

var defaultLogger *slog.Logger

// Init 初始化全局日志器。format 支持 json 和 text。
func Init(level string, format string) {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default 返回全局日志器，未初始化时使用 info/json
func Default() *slog.Logger {
	if defaultLogger == nil {
		Init("info", "json")
	}
	return defaultLogger
}

// FromContext 返回携带 Context 中请求级字段的 Logger
func FromContext(ctx context.Context) *slog.Logger {
	log := Default()
	for _, key := range contextKeys {
		if v := ctx.Value(key); v != nil {
			log = log.With(string(key), v)
		}
	}
	return log
}

// WithContext 将日志字段写入 Context
func WithContext(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// Debug 记录 DEBUG 级别日志
func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

// Info 记录 INFO 级别日志
func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

// Warn 记录 WARN 级别日志
func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

// Error 记录 ERROR 级别日志，err 作为 error 字段附加
func Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	FromContext(ctx).Error(msg, args...)
}

// Fatal 记录错误日志后退出进程
func Fatal(ctx context.Context, msg string, err error, args ...any) {
	Error(ctx, msg, err, args...)
	os.Exit(1)
}
