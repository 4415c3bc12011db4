package router

import (
	"github.com/gin-gonic/gin"

	"shop-copy-ai-api/internal/interfaces/http/middleware"
)

// registerV1Routes 注册 /api/v1 下的业务路由
func registerV1Routes(v1 *gin.RouterGroup, handlers Handlers, verifier middleware.TokenVerifier) {
	v1.GET("/ping", handlers.Health.Ping)

	// 当前商家
	auth := v1.Group("/auth")
	auth.Use(middleware.Auth(verifier))
	{
		auth.GET("/me", handlers.Auth.Me)
		auth.PUT("/membership", handlers.Auth.ChangeMembership)
	}

	// 描述生成：店铺 ID 来自令牌或请求体
	ai := v1.Group("/ai")
	ai.Use(middleware.OptionalAuth(verifier))
	{
		ai.POST("/prompt", handlers.AI.Prompt)
	}

	// 描述查询：店铺 ID 来自令牌或 query 参数
	descriptions := v1.Group("/descriptions")
	descriptions.Use(middleware.OptionalAuth(verifier))
	{
		descriptions.GET("", handlers.Descriptions.ListByStore)
		descriptions.GET("/:productID", handlers.Descriptions.ListByProduct)
		descriptions.GET("/:productID/recent", handlers.Descriptions.ListRecentByProduct)
	}

	// 支付与额度：全部要求商家令牌
	payments := v1.Group("/payments")
	payments.Use(middleware.Auth(verifier))
	{
		payments.POST("/create-payment-intent", handlers.Payments.CreatePaymentIntent)
		payments.POST("/confirm-payment", handlers.Payments.ConfirmPayment)
		payments.GET("/credits/:storeID", handlers.Payments.Balance)
		payments.GET("/credits/:storeID/history", handlers.Payments.History)
		payments.POST("/refund", handlers.Payments.Refund)
		payments.GET("/refund/:paymentIntentId", handlers.Payments.RefundStatus)
	}

	// Shopify 合规 Webhook；抹除与删除是破坏性操作，要求商家令牌
	shopify := v1.Group("/shopify")
	{
		shopify.POST("/customers/data_request", handlers.Shopify.CustomersDataRequest)

		destructive := shopify.Group("")
		destructive.Use(middleware.Auth(verifier))
		{
			destructive.POST("/shop/redact", handlers.Shopify.ShopRedact)
			destructive.DELETE("/data/shop/delete", handlers.Shopify.ShopDelete)
		}
	}
}
