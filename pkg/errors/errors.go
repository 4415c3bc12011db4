// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码；这些字符串同时是对外的机器可读错误码
// （前端依赖 USAGE_LIMIT_REACHED / INSUFFICIENT_CREDITS 触发对应流程）
const (
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeAuthentication      ErrorCode = "AUTHENTICATION_ERROR"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeUsageLimitReached   ErrorCode = "USAGE_LIMIT_REACHED"
	CodeInsufficientCredits ErrorCode = "INSUFFICIENT_CREDITS"
	CodeProviderError       ErrorCode = "PROVIDER_ERROR"
	CodePaymentError        ErrorCode = "PAYMENT_ERROR"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeTooManyRequests     ErrorCode = "TOO_MANY_REQUESTS"
	CodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息（返回副本，预定义错误不被修改）
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeValidation, CodePaymentError:
		return http.StatusBadRequest
	case CodeAuthentication:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUsageLimitReached, CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeInsufficientCredits:
		return http.StatusPaymentRequired
	case CodeConflict:
		return http.StatusConflict
	case CodeProviderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrValidation          = New(CodeValidation, "invalid parameter")
	ErrAuthentication      = New(CodeAuthentication, "authentication failed")
	ErrNotFound            = New(CodeNotFound, "resource not found")
	ErrUsageLimitReached   = New(CodeUsageLimitReached, "daily limit reached")
	ErrInsufficientCredits = New(CodeInsufficientCredits, "insufficient credits")
	ErrProvider            = New(CodeProviderError, "ai provider call failed")
	ErrPayment             = New(CodePaymentError, "payment processing failed")
	ErrInternal            = New(CodeInternalError, "internal server error")
)

// IsAppError 检查错误链上是否有 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError；沿错误链解包，
// 外层用 %w 包装过的业务错误保持原始错误码
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternalError, "internal server error")
}

// IsCode 检查错误链上是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
