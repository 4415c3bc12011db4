package handler

import (
	"shop-copy-ai-api/internal/application/gdpr"
	"shop-copy-ai-api/internal/interfaces/http/dto"
	"shop-copy-ai-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ShopifyHandler Shopify 合规 Webhook 处理器
type ShopifyHandler struct {
	gdpr *gdpr.Service
}

// NewShopifyHandler 创建合规 Webhook 处理器
func NewShopifyHandler(gdprSvc *gdpr.Service) *ShopifyHandler {
	return &ShopifyHandler{
		gdpr: gdprSvc,
	}
}

// CustomersDataRequest 导出店铺的全部个人数据
// @Summary 导出店铺数据
// @Tags Shopify
// @Accept json
// @Produce json
// @Param body body dto.ShopRequest true "店铺标识"
// @Success 200 {object} dto.Response[gdpr.ExportResult]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/shopify/customers/data_request [post]
func (h *ShopifyHandler) CustomersDataRequest(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := h.bindShop(c)
	if !ok {
		return
	}

	result, err := h.gdpr.Export(ctx, req.Store())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, result)
}

// ShopRedact 抹除店铺的敏感字段
// @Summary 抹除店铺敏感字段
// @Tags Shopify
// @Accept json
// @Produce json
// @Param body body dto.ShopRequest true "店铺标识"
// @Success 200 {object} dto.Response[gdpr.RedactResult]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/shopify/shop/redact [post]
func (h *ShopifyHandler) ShopRedact(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := h.bindShop(c)
	if !ok {
		return
	}

	result, err := h.gdpr.Redact(ctx, req.Store())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	logger.Info(ctx, "shop redacted", "store_id", req.Store())
	dto.Success(c, result)
}

// ShopDelete 删除店铺的全部数据
// @Summary 删除店铺数据
// @Tags Shopify
// @Produce json
// @Param storeID query string false "店铺 ID（也可放在请求体）"
// @Success 200 {object} dto.Response[gdpr.DeletionResult]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/shopify/data/shop/delete [delete]
func (h *ShopifyHandler) ShopDelete(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ShopRequest
	_ = c.ShouldBindJSON(&req)
	storeID := req.Store()
	if storeID == "" {
		storeID = c.Query("storeID")
	}
	if storeID == "" {
		dto.BadRequest(c, "storeID is required")
		return
	}

	result, err := h.gdpr.Delete(ctx, storeID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	logger.Info(ctx, "shop data deleted", "store_id", storeID)
	dto.Success(c, result)
}

func (h *ShopifyHandler) bindShop(c *gin.Context) (dto.ShopRequest, bool) {
	var req dto.ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return req, false
	}
	if req.Store() == "" {
		dto.BadRequest(c, "shop_domain or storeID is required")
		return req, false
	}
	return req, true
}
