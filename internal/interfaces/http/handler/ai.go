// Package handler 提供 HTTP 请求处理器
package handler

import (
	"shop-copy-ai-api/internal/application/generation"
	"shop-copy-ai-api/internal/interfaces/http/dto"
	"shop-copy-ai-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// AIHandler 描述生成处理器
type AIHandler struct {
	orchestrator *generation.Orchestrator
}

// NewAIHandler 创建描述生成处理器
func NewAIHandler(orchestrator *generation.Orchestrator) *AIHandler {
	return &AIHandler{
		orchestrator: orchestrator,
	}
}

// Prompt 生成商品描述
// @Summary 生成商品描述
// @Description 调用大模型为商品生成一条描述，消耗 1 个额度
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.PromptRequest true "生成请求"
// @Success 200 {object} dto.Response[dto.PromptResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /v1/ai/prompt [post]
func (h *AIHandler) Prompt(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	storeID := req.ShopifyStoreID
	if merchant, ok := middleware.MerchantFromContext(c); ok {
		// 已认证请求以令牌归属的店铺为准
		storeID = merchant.StoreID
	}

	out, err := h.orchestrator.Generate(ctx, generation.GenerateInput{
		StoreID:       storeID,
		ProductRef:    req.ProductID,
		Title:         req.PromptSettings.Title,
		Description:   req.PromptSettings.Description,
		CustomRequest: req.PromptSettings.CustomRequest,
		Provider:      req.Provider,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, dto.PromptResponse{
		DescriptionID: out.Description.ID,
		ProductID:     out.Description.ProductID,
		Description:   out.Description.Body,
		Credits:       out.Balance,
	})
}
