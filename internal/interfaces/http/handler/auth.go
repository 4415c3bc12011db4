package handler

import (
	"net/http"

	"shop-copy-ai-api/internal/application/identity"
	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/interfaces/http/dto"
	"shop-copy-ai-api/internal/interfaces/http/middleware"
	"shop-copy-ai-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthHandler 商家认证处理器
type AuthHandler struct {
	resolver *identity.Resolver
}

// NewAuthHandler 创建商家认证处理器
func NewAuthHandler(resolver *identity.Resolver) *AuthHandler {
	return &AuthHandler{
		resolver: resolver,
	}
}

// Authorize 跳转到 OAuth 授权页
// @Summary 跳转到 OAuth 授权页
// @Tags Auth
// @Param storeID path string true "店铺 ID"
// @Success 302
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/{storeID} [get]
func (h *AuthHandler) Authorize(c *gin.Context) {
	url, err := h.resolver.BeginAuthorization(c.Param("storeID"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Callback OAuth 授权回调，换取并绑定访问令牌
// @Summary OAuth 授权回调
// @Tags Auth
// @Produce json
// @Param code query string true "授权码"
// @Param state query string true "状态（携带店铺 ID）"
// @Success 200 {object} map[string]string
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	merchant, err := h.resolver.CompleteAuthorization(ctx, c.Query("state"), c.Query("code"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	logger.Info(ctx, "merchant authorized", "store_id", merchant.StoreID)

	token := ""
	if merchant.AccessToken != nil {
		token = *merchant.AccessToken
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// Me 查询当前商家信息
// @Summary 查询当前商家信息
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.Response[dto.MerchantResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		dto.Unauthorized(c, "authentication required")
		return
	}

	dto.Success(c, dto.MerchantResponse{
		StoreID:    merchant.StoreID,
		Email:      merchant.Email,
		Membership: string(merchant.Membership),
	})
}

// ChangeMembership 变更当前商家的会员等级
// @Summary 变更会员等级
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.ChangeMembershipRequest true "目标等级"
// @Success 200 {object} dto.Response[dto.MerchantResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/membership [put]
func (h *AuthHandler) ChangeMembership(c *gin.Context) {
	ctx := c.Request.Context()

	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		dto.Unauthorized(c, "authentication required")
		return
	}

	var req dto.ChangeMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	membership := entity.Membership(req.Membership)
	if err := h.resolver.ChangeMembership(ctx, merchant.StoreID, membership); err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, dto.MerchantResponse{
		StoreID:    merchant.StoreID,
		Email:      merchant.Email,
		Membership: string(membership),
	})
}
