package handler

import (
	"strconv"

	"shop-copy-ai-api/internal/application/payments"
	"shop-copy-ai-api/internal/domain/repository"
	"shop-copy-ai-api/internal/interfaces/http/dto"
	"shop-copy-ai-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// PaymentHandler 支付处理器
type PaymentHandler struct {
	payments *payments.Service
}

// NewPaymentHandler 创建支付处理器
func NewPaymentHandler(paymentSvc *payments.Service) *PaymentHandler {
	return &PaymentHandler{
		payments: paymentSvc,
	}
}

// CreatePaymentIntent 创建额度购买的支付意图
// @Summary 创建支付意图
// @Tags Payments
// @Accept json
// @Produce json
// @Param body body dto.CreatePaymentIntentRequest true "购买请求"
// @Success 200 {object} dto.Response[payments.IntentResult]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/payments/create-payment-intent [post]
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.CreditAmount <= 0 {
		dto.BadRequest(c, "creditAmount must be positive")
		return
	}

	storeID, ok := h.resolveStoreID(c, req.StoreID)
	if !ok {
		return
	}

	result, err := h.payments.CreateIntent(ctx, storeID, req.CreditAmount)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, result)
}

// ConfirmPayment 确认支付并入账额度
// @Summary 确认支付并入账额度
// @Tags Payments
// @Accept json
// @Produce json
// @Param body body dto.ConfirmPaymentRequest true "确认请求"
// @Success 200 {object} dto.Response[payments.ConfirmResult]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/payments/confirm-payment [post]
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	storeID, ok := h.resolveStoreID(c, req.StoreID)
	if !ok {
		return
	}

	result, err := h.payments.Confirm(ctx, storeID, req.PaymentIntentID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, result)
}

// Balance 查询店铺额度余额
// @Summary 查询额度余额
// @Tags Payments
// @Produce json
// @Param storeID path string true "店铺 ID"
// @Success 200 {object} dto.Response[dto.BalanceResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/payments/credits/{storeID} [get]
func (h *PaymentHandler) Balance(c *gin.Context) {
	ctx := c.Request.Context()

	storeID, ok := h.resolveStoreID(c, c.Param("storeID"))
	if !ok {
		return
	}

	balance, err := h.payments.Balance(ctx, storeID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, dto.BalanceResponse{
		StoreID: storeID,
		Credits: balance,
	})
}

// History 分页查询额度流水
// @Summary 分页查询额度流水
// @Tags Payments
// @Produce json
// @Param storeID path string true "店铺 ID"
// @Param page query int false "页码"
// @Param pageSize query int false "每页条数"
// @Success 200 {object} dto.Response[[]dto.TransactionItem]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/payments/credits/{storeID}/history [get]
func (h *PaymentHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	storeID, ok := h.resolveStoreID(c, c.Param("storeID"))
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := h.payments.History(ctx, storeID, repository.NewPagination(page, pageSize))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.FromTransactions(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// Refund 对一笔额度购买发起退款
// @Summary 发起退款
// @Tags Payments
// @Accept json
// @Produce json
// @Param body body dto.RefundRequest true "退款请求"
// @Success 200 {object} dto.Response[payments.RefundInfo]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/payments/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	storeID, ok := h.resolveStoreID(c, req.StoreID)
	if !ok {
		return
	}

	info, err := h.payments.Refund(ctx, storeID, req.PaymentIntentID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, info)
}

// RefundStatus 查询一笔支付的退款状态
// @Summary 查询退款状态
// @Tags Payments
// @Produce json
// @Param paymentIntentId path string true "支付意图 ID"
// @Success 200 {object} dto.Response[[]payments.RefundInfo]
// @Router /v1/payments/refund/{paymentIntentId} [get]
func (h *PaymentHandler) RefundStatus(c *gin.Context) {
	ctx := c.Request.Context()

	infos, err := h.payments.RefundStatus(ctx, c.Param("paymentIntentId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	dto.Success(c, infos)
}

// resolveStoreID 取支付操作的店铺作用域。
// 支付路由要求认证，作用域一律以令牌归属的商家为准；
// body 指定其它店铺时拒绝。
func (h *PaymentHandler) resolveStoreID(c *gin.Context, bodyStoreID string) (string, bool) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		dto.Unauthorized(c, "authentication required")
		return "", false
	}
	if bodyStoreID != "" && bodyStoreID != merchant.StoreID {
		dto.Unauthorized(c, "storeID does not match the authenticated merchant")
		return "", false
	}
	return merchant.StoreID, true
}
