package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/interfaces/http/handler"
	pkgerrors "shop-copy-ai-api/pkg/errors"
)

type stubVerifier struct{}

func (stubVerifier) VerifyAccessToken(ctx context.Context, token string) (*entity.Merchant, error) {
	return nil, pkgerrors.New(pkgerrors.CodeAuthentication, "invalid access token")
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handlers := Handlers{
		Health:       handler.NewHealthHandler(nil, nil),
		Auth:         handler.NewAuthHandler(nil),
		AI:           handler.NewAIHandler(nil),
		Descriptions: handler.NewDescriptionHandler(nil),
		Payments:     handler.NewPaymentHandler(nil),
		Shopify:      handler.NewShopifyHandler(nil),
	}
	registerV1Routes(engine.Group("/api/v1"), handlers, stubVerifier{})
	return engine
}

func perform(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestDestructiveComplianceRoutesRequireAuth(t *testing.T) {
	engine := newTestEngine()

	rec := perform(engine, http.MethodPost, "/api/v1/shopify/shop/redact", `{"shop_domain":"store-1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(engine, http.MethodDelete, "/api/v1/shopify/data/shop/delete?storeID=store-1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDataRequestRouteStaysOpen(t *testing.T) {
	engine := newTestEngine()

	// 导出端点无需令牌：空请求体在参数校验处被拒，而不是在认证处
	rec := perform(engine, http.MethodPost, "/api/v1/shopify/customers/data_request", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentRoutesRequireAuth(t *testing.T) {
	engine := newTestEngine()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/payments/create-payment-intent"},
		{http.MethodPost, "/api/v1/payments/confirm-payment"},
		{http.MethodGet, "/api/v1/payments/credits/store-1"},
		{http.MethodGet, "/api/v1/payments/credits/store-1/history"},
		{http.MethodPost, "/api/v1/payments/refund"},
		{http.MethodGet, "/api/v1/payments/refund/pi_1"},
	}
	for _, route := range paths {
		rec := perform(engine, route.method, route.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestPaymentRoutesRejectInvalidToken(t *testing.T) {
	engine := newTestEngine()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/credits/store-1", nil)
	req.Header.Set("Authorization", "Bearer tok-bad")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
