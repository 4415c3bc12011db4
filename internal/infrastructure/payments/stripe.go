// Package payments 提供 Stripe 支付网关实现
package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shop-copy-ai-api/internal/config"
)

var tracer = otel.Tracer("payments")

// StripeGateway Stripe 支付网关
type StripeGateway struct {
	api      *client.API
	currency string
}

// NewStripeGateway 创建 Stripe 网关；非生产环境使用测试密钥
func NewStripeGateway(cfg *config.Config) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.Payments.Stripe.Key(cfg.App.Env), nil)
	return &StripeGateway{
		api:      api,
		currency: cfg.Payments.Stripe.Currency,
	}
}

// CreatePaymentIntent 创建支付意图，金额单位为额度数（1 额度 = 1 美元）
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, storeID string, creditAmount int64, customerID *string) (*stripe.PaymentIntent, error) {
	ctx, span := tracer.Start(ctx, "stripe.CreatePaymentIntent",
		trace.WithAttributes(
			attribute.String("stripe.store_id", storeID),
			attribute.Int64("stripe.credit_amount", creditAmount),
		))
	defer span.End()

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(creditAmount * 100),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if customerID != nil && *customerID != "" {
		params.Customer = stripe.String(*customerID)
	}
	params.AddMetadata("storeID", storeID)
	params.AddMetadata("creditAmount", fmt.Sprintf("%d", creditAmount))
	params.AddMetadata("type", "credit_purchase")

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi, nil
}

// GetPaymentIntent 查询支付意图
func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	ctx, span := tracer.Start(ctx, "stripe.GetPaymentIntent",
		trace.WithAttributes(attribute.String("stripe.payment_intent", id)))
	defer span.End()

	pi, err := g.api.PaymentIntents.Get(id, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return pi, nil
}

// CreateRefund 对支付意图发起全额退款
func (g *StripeGateway) CreateRefund(ctx context.Context, paymentIntentID string) (*stripe.Refund, error) {
	ctx, span := tracer.Start(ctx, "stripe.CreateRefund",
		trace.WithAttributes(attribute.String("stripe.payment_intent", paymentIntentID)))
	defer span.End()

	refund, err := g.api.Refunds.New(&stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(paymentIntentID),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}
	return refund, nil
}

// ListRefunds 列出支付意图的退款记录
func (g *StripeGateway) ListRefunds(ctx context.Context, paymentIntentID string) ([]*stripe.Refund, error) {
	ctx, span := tracer.Start(ctx, "stripe.ListRefunds",
		trace.WithAttributes(attribute.String("stripe.payment_intent", paymentIntentID)))
	defer span.End()

	params := &stripe.RefundListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx

	var refunds []*stripe.Refund
	iter := g.api.Refunds.List(params)
	for iter.Next() {
		refunds = append(refunds, iter.Refund())
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	return refunds, nil
}

// CreateCustomer 创建 Stripe 客户；店铺未提供邮箱时使用占位邮箱
func (g *StripeGateway) CreateCustomer(ctx context.Context, storeID, email string) (*stripe.Customer, error) {
	ctx, span := tracer.Start(ctx, "stripe.CreateCustomer",
		trace.WithAttributes(attribute.String("stripe.store_id", storeID)))
	defer span.End()

	if email == "" {
		email = fmt.Sprintf("%s@unknown.com", storeID)
	}

	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(storeID),
	}
	params.AddMetadata("storeID", storeID)

	customer, err := g.api.Customers.New(params)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}
