package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop-copy-ai-api/pkg/logger"
)

const (
	// RequestIDHeader 请求 ID 头，调用方可以自带以便端到端关联
	RequestIDHeader = "X-Request-ID"
)

// RequestID 为每个请求分配 ID，写入日志 Context 和响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set("request_id", id)
		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
