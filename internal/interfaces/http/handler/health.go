package handler

import (
	"context"
	"net/http"
	"time"

	"shop-copy-ai-api/internal/infrastructure/persistence/postgres"
	"shop-copy-ai-api/internal/infrastructure/persistence/redis"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	pg    *postgres.Client
	redis *redis.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(pg *postgres.Client, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		pg:    pg,
		redis: redisClient,
	}
}

type dependencyStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Health 综合健康检查
// @Summary 综合健康检查
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deps := map[string]dependencyStatus{
		"postgres": h.check(ctx, h.pg.HealthCheck),
		"redis":    h.check(ctx, h.redis.HealthCheck),
	}

	status := "ok"
	httpStatus := http.StatusOK
	for _, dep := range deps {
		if dep.Status != "ok" {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":       status,
		"dependencies": deps,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready 就绪探针，依赖全部可用才返回 200
func (h *HealthHandler) Ready(c *gin.Context) {
	h.Health(c)
}

// Live 存活探针，不触达外部依赖
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ping 连通性探测
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *HealthHandler) check(ctx context.Context, fn func(context.Context) error) dependencyStatus {
	start := time.Now()
	if err := fn(ctx); err != nil {
		return dependencyStatus{
			Status:  "error",
			Latency: time.Since(start).String(),
			Error:   err.Error(),
		}
	}
	return dependencyStatus{
		Status:  "ok",
		Latency: time.Since(start).String(),
	}
}
