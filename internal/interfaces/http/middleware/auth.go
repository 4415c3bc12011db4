// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/pkg/logger"
)

const (
	// MerchantKey Gin Context 中商家对象的键
	MerchantKey = "merchant"
	// StoreIDKey Gin Context 中店铺 ID 的键
	StoreIDKey = "store_id"
)

// TokenVerifier 令牌校验依赖（由 identity.Resolver 实现）
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*entity.Merchant, error)
}

// Auth 认证中间件，校验不透明 Bearer 令牌并注入商家信息
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		merchant, err := verifier.VerifyAccessToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "invalid access token")
			return
		}

		injectMerchant(c, merchant)
		c.Next()
	}
}

// OptionalAuth 可选认证：携带合法令牌时注入身份，否则放行
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if ok {
			merchant, err := verifier.VerifyAccessToken(c.Request.Context(), token)
			if err == nil {
				injectMerchant(c, merchant)
			}
		}
		c.Next()
	}
}

// bearerToken 从 Authorization 头解析 Bearer 令牌
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// injectMerchant 将商家信息注入 Gin 与 Logger Context
func injectMerchant(c *gin.Context, merchant *entity.Merchant) {
	c.Set(MerchantKey, merchant)
	c.Set(StoreIDKey, merchant.StoreID)

	ctx := logger.WithContext(c.Request.Context(), logger.StoreIDKey, merchant.StoreID)
	c.Request = c.Request.WithContext(ctx)
}

// MerchantFromContext 从 Gin Context 取出商家对象
func MerchantFromContext(c *gin.Context) (*entity.Merchant, bool) {
	v, ok := c.Get(MerchantKey)
	if !ok {
		return nil, false
	}
	merchant, ok := v.(*entity.Merchant)
	return merchant, ok
}

// abortUnauthorized 终止请求并返回 401
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":     "AUTHENTICATION_ERROR",
		"message":  msg,
		"trace_id": c.GetString("trace_id"),
	})
}
