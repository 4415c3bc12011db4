// Package router 组装 HTTP 路由和中间件
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shop-copy-ai-api/internal/config"
	"shop-copy-ai-api/internal/interfaces/http/handler"
	"shop-copy-ai-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	AI           *handler.AIHandler
	Descriptions *handler.DescriptionHandler
	Payments     *handler.PaymentHandler
	Shopify      *handler.ShopifyHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	verifier middleware.TokenVerifier
	limiter  middleware.RateLimiter
}

// New 创建路由器并完成中间件和路由装配
func New(
	cfg *config.Config,
	handlers Handlers,
	verifier middleware.TokenVerifier,
	limiter middleware.RateLimiter,
) *Router {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		verifier: verifier,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回底层 gin 引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 装配全局中间件，顺序即执行顺序
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerMinute: r.cfg.Security.RateLimit.RequestsPerMinute,
		Burst:             r.cfg.Security.RateLimit.Burst,
	}, r.limiter))
}

// setupRoutes 注册全部路由
func (r *Router) setupRoutes() {
	// 健康检查与探针
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)
	r.engine.GET("/ping", r.handlers.Health.Ping)

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	// OAuth 授权流程不在 /api/v1 下
	r.engine.GET("/auth/:storeID", r.handlers.Auth.Authorize)
	r.engine.GET("/api/auth/callback", r.handlers.Auth.Callback)

	v1 := r.engine.Group("/api/v1")
	registerV1Routes(v1, r.handlers, r.verifier)
}
