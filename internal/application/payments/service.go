// Package payments 提供额度购买与退款的业务编排
package payments

import (
	"context"
	"strconv"

	"github.com/stripe/stripe-go/v81"

	"shop-copy-ai-api/internal/application/identity"
	"shop-copy-ai-api/internal/application/ledger"
	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
	pkgerrors "shop-copy-ai-api/pkg/errors"
	"shop-copy-ai-api/pkg/logger"
)

// Gateway 支付网关的最小依赖（port），由 StripeGateway 实现
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, storeID string, creditAmount int64, customerID *string) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	CreateRefund(ctx context.Context, paymentIntentID string) (*stripe.Refund, error)
	ListRefunds(ctx context.Context, paymentIntentID string) ([]*stripe.Refund, error)
	CreateCustomer(ctx context.Context, storeID, email string) (*stripe.Customer, error)
}

// IntentResult 创建支付意图的结果
type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	CreditAmount    int64  `json:"creditAmount"`
	Currency        string `json:"currency"`
}

// ConfirmResult 确认支付的结果
type ConfirmResult struct {
	Success      bool `json:"success"`
	CreditsAdded int  `json:"creditsAdded"`
	TotalCredits int  `json:"totalCredits"`
}

// RefundInfo 退款状态
type RefundInfo struct {
	ID      string `json:"id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	Created int64  `json:"created"`
}

// Service 支付业务服务
type Service struct {
	gateway   Gateway
	merchants repository.MerchantRepository
	ledger    *ledger.Service
	resolver  *identity.Resolver
}

// NewService 创建支付服务
func NewService(
	gateway Gateway,
	merchants repository.MerchantRepository,
	ledgerSvc *ledger.Service,
	resolver *identity.Resolver,
) *Service {
	return &Service{
		gateway:   gateway,
		merchants: merchants,
		ledger:    ledgerSvc,
		resolver:  resolver,
	}
}

// CreateIntent 为额度购买创建支付意图，必要时先创建 Stripe 客户
func (s *Service) CreateIntent(ctx context.Context, storeID string, creditAmount int64) (*IntentResult, error) {
	if creditAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}

	merchant, err := s.resolver.ResolveOrCreate(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if !merchant.HasStripeCustomer() {
		customer, err := s.gateway.CreateCustomer(ctx, merchant.StoreID, merchant.Email)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodePaymentError, "failed to create stripe customer")
		}
		if err := s.merchants.UpdateStripeCustomerID(ctx, merchant.StoreID, customer.ID); err != nil {
			return nil, err
		}
		merchant.StripeCustomerID = &customer.ID
	}

	pi, err := s.gateway.CreatePaymentIntent(ctx, merchant.StoreID, creditAmount, merchant.StripeCustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePaymentError, "failed to create payment intent")
	}

	return &IntentResult{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		Amount:          pi.Amount,
		CreditAmount:    creditAmount,
		Currency:        string(pi.Currency),
	}, nil
}

// Confirm 确认支付并入账额度。
// 只有状态为 succeeded 且 metadata 与店铺匹配的支付意图才会入账；
// 同一支付单重复确认是幂等的，不会重复加分。
func (s *Service) Confirm(ctx context.Context, storeID, paymentIntentID string) (*ConfirmResult, error) {
	if paymentIntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	merchant, err := s.merchants.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}

	// 幂等：已入账的支付单直接返回当前状态
	if existing, err := s.ledger.FindByPaymentID(ctx, paymentIntentID); err != nil {
		return nil, err
	} else if existing != nil && existing.Kind == entity.CreditKindPaid {
		balance, err := s.ledger.Balance(ctx, storeID)
		if err != nil {
			return nil, err
		}
		return &ConfirmResult{Success: true, CreditsAdded: existing.Credits, TotalCredits: balance}, nil
	}

	pi, err := s.gateway.GetPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePaymentError, "failed to retrieve payment intent")
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, pkgerrors.New(pkgerrors.CodePaymentError, "payment has not succeeded").
			WithDetail(string(pi.Status))
	}
	if pi.Metadata["type"] != "credit_purchase" || pi.Metadata["storeID"] != storeID {
		return nil, pkgerrors.New(pkgerrors.CodePaymentError, "payment metadata mismatch")
	}

	creditAmount, err := strconv.Atoi(pi.Metadata["creditAmount"])
	if err != nil || creditAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodePaymentError, "invalid credit amount in payment metadata")
	}

	if err := s.ledger.GrantPurchase(ctx, storeID, creditAmount, paymentIntentID); err != nil {
		return nil, err
	}
	logger.Info(ctx, "credits purchased", "store_id", storeID,
		"payment_intent", paymentIntentID, "credits", creditAmount)

	balance, err := s.ledger.Balance(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Success: true, CreditsAdded: creditAmount, TotalCredits: balance}, nil
}

// Balance 查询店铺余额
func (s *Service) Balance(ctx context.Context, storeID string) (int, error) {
	merchant, err := s.merchants.GetByStoreID(ctx, storeID)
	if err != nil {
		return 0, err
	}
	if merchant == nil {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}
	return s.ledger.Balance(ctx, storeID)
}

// History 分页查询流水
func (s *Service) History(ctx context.Context, storeID string, pagination repository.Pagination) (*repository.PagedResult[*entity.CreditTransaction], error) {
	merchant, err := s.merchants.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}
	return s.ledger.History(ctx, storeID, pagination)
}

// Refund 对已入账的支付单发起全额退款并冲销额度
func (s *Service) Refund(ctx context.Context, storeID, paymentIntentID string) (*RefundInfo, error) {
	if paymentIntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	purchase, err := s.ledger.FindByPaymentID(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if purchase == nil || purchase.Kind != entity.CreditKindPaid {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found for payment")
	}
	if purchase.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeAuthentication, "payment belongs to another store")
	}

	existing, err := s.gateway.ListRefunds(ctx, paymentIntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePaymentError, "failed to check existing refunds")
	}
	for _, r := range existing {
		if r.Status == stripe.RefundStatusSucceeded || r.Status == stripe.RefundStatusPending {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already refunded")
		}
	}

	refund, err := s.gateway.CreateRefund(ctx, paymentIntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePaymentError, "failed to create refund")
	}

	if err := s.ledger.RecordRefund(ctx, storeID, purchase.Credits, paymentIntentID); err != nil {
		return nil, err
	}
	logger.Info(ctx, "payment refunded", "store_id", storeID,
		"payment_intent", paymentIntentID, "credits", purchase.Credits)

	return &RefundInfo{
		ID:      refund.ID,
		Amount:  refund.Amount,
		Status:  string(refund.Status),
		Created: refund.Created,
	}, nil
}

// RefundStatus 查询支付单的退款状态
func (s *Service) RefundStatus(ctx context.Context, paymentIntentID string) ([]RefundInfo, error) {
	if paymentIntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	refunds, err := s.gateway.ListRefunds(ctx, paymentIntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePaymentError, "failed to list refunds")
	}

	infos := make([]RefundInfo, 0, len(refunds))
	for _, r := range refunds {
		infos = append(infos, RefundInfo{
			ID:      r.ID,
			Amount:  r.Amount,
			Status:  string(r.Status),
			Created: r.Created,
		})
	}
	return infos, nil
}
