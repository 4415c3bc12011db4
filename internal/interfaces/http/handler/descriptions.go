package handler

import (
	"shop-copy-ai-api/internal/application/descriptions"
	"shop-copy-ai-api/internal/interfaces/http/dto"
	"shop-copy-ai-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// DescriptionHandler 描述查询处理器
type DescriptionHandler struct {
	store *descriptions.Store
}

// NewDescriptionHandler 创建描述查询处理器
func NewDescriptionHandler(store *descriptions.Store) *DescriptionHandler {
	return &DescriptionHandler{
		store: store,
	}
}

// ListByProduct 查询商品的历史描述
// @Summary 查询商品的历史描述
// @Tags Descriptions
// @Produce json
// @Param productID path string true "商品 ID 或 Shopify GID"
// @Param storeID query string false "店铺 ID（可选，用于限定店铺）"
// @Success 200 {object} dto.Response[[]dto.DescriptionItem]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/descriptions/{productID} [get]
func (h *DescriptionHandler) ListByProduct(c *gin.Context) {
	ctx := c.Request.Context()

	descs, err := h.store.ListByProduct(ctx, h.optionalStoreID(c), c.Param("productID"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, dto.FromDescriptions(descs))
}

// ListByStore 查询店铺全部描述
// @Summary 查询店铺全部描述
// @Tags Descriptions
// @Produce json
// @Param storeID query string false "店铺 ID（未携带令牌时必填）"
// @Success 200 {object} dto.Response[[]dto.DescriptionItem]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/descriptions [get]
func (h *DescriptionHandler) ListByStore(c *gin.Context) {
	ctx := c.Request.Context()

	storeID := h.optionalStoreID(c)
	if storeID == "" {
		dto.BadRequest(c, "storeID is required")
		return
	}

	descs, err := h.store.ListByStore(ctx, storeID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, dto.FromDescriptions(descs))
}

// ListRecentByProduct 查询商品最近生成的描述
// @Summary 查询商品最近生成的描述
// @Tags Descriptions
// @Produce json
// @Param productID path string true "商品 ID 或 Shopify GID"
// @Param storeID query string false "店铺 ID（可选，用于限定店铺）"
// @Success 200 {object} dto.Response[[]dto.DescriptionItem]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/descriptions/{productID}/recent [get]
func (h *DescriptionHandler) ListRecentByProduct(c *gin.Context) {
	ctx := c.Request.Context()

	descs, err := h.store.ListRecentByProduct(ctx, h.optionalStoreID(c), c.Param("productID"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, dto.FromDescriptions(descs))
}

// optionalStoreID 取店铺作用域：优先令牌归属的商家，其次 query 参数；
// 都没有时返回空串，由调用方决定是否必填
func (h *DescriptionHandler) optionalStoreID(c *gin.Context) string {
	if merchant, ok := middleware.MerchantFromContext(c); ok {
		return merchant.StoreID
	}
	return c.Query("storeID")
}
