// Package ledger 提供额度账本服务
package ledger

import (
	"context"
	"encoding/json"
	"time"

	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
	pkgerrors "shop-copy-ai-api/pkg/errors"
	"shop-copy-ai-api/pkg/logger"
	"shop-copy-ai-api/pkg/metrics"
)

// balanceTTL 余额缓存有效期；流水追加时主动失效，TTL 仅为兜底
const balanceTTL = 30 * time.Second

// BalanceCache 账本对缓存层的最小依赖（port）
type BalanceCache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	InvalidateStore(ctx context.Context, storeID string) error
}

// Service 额度账本服务。余额是流水之和，流水只追加不修改。
type Service struct {
	credits repository.CreditRepository
	cache   BalanceCache
}

// NewService 创建账本服务；cache 可为 nil（直接查库）
func NewService(credits repository.CreditRepository, cache BalanceCache) *Service {
	return &Service{
		credits: credits,
		cache:   cache,
	}
}

func balanceKey(storeID string) string {
	return "credits:balance:" + storeID
}

// Balance 查询店铺当前余额（Read-Through 缓存）
func (s *Service) Balance(ctx context.Context, storeID string) (int, error) {
	if s.cache == nil {
		return s.credits.SumByStoreID(ctx, storeID)
	}

	data, err := s.cache.GetOrLoad(ctx, balanceKey(storeID), balanceTTL, func() (interface{}, error) {
		return s.credits.SumByStoreID(ctx, storeID)
	})
	if err != nil {
		// 缓存层故障时降级为直接查库
		logger.Warn(ctx, "balance cache unavailable, falling back to db", "store_id", storeID, "error", err)
		return s.credits.SumByStoreID(ctx, storeID)
	}

	var balance int
	if err := json.Unmarshal(data, &balance); err != nil {
		return s.credits.SumByStoreID(ctx, storeID)
	}
	return balance, nil
}

// AssertSufficient 校验余额是否足够。扣减前的预检直接查库，
// 不走余额缓存，避免失效失败后的陈旧余额放行注定被拒的扣减。
func (s *Service) AssertSufficient(ctx context.Context, storeID string, required int) error {
	balance, err := s.credits.SumByStoreID(ctx, storeID)
	if err != nil {
		return err
	}
	if balance < required {
		return pkgerrors.New(pkgerrors.CodeInsufficientCredits, "insufficient credits")
	}
	return nil
}

// Grant 入账额度（free 或 paid）
func (s *Service) Grant(ctx context.Context, storeID string, credits int, kind entity.CreditKind) error {
	if credits <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credits must be positive")
	}
	if kind != entity.CreditKindFree && kind != entity.CreditKindPaid {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid grant kind").WithDetail(string(kind))
	}

	if err := s.credits.Append(ctx, entity.NewGrant(storeID, credits, kind)); err != nil {
		return err
	}
	metrics.CreditsGrantedTotal.WithLabelValues(string(kind)).Add(float64(credits))
	s.invalidate(ctx, storeID)
	return nil
}

// GrantPurchase 入账付费额度并关联支付单
func (s *Service) GrantPurchase(ctx context.Context, storeID string, credits int, stripePaymentID string) error {
	if credits <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credits must be positive")
	}

	tx := entity.NewGrant(storeID, credits, entity.CreditKindPaid)
	tx.StripePaymentID = &stripePaymentID
	if err := s.credits.Append(ctx, tx); err != nil {
		return err
	}
	metrics.CreditsGrantedTotal.WithLabelValues(string(entity.CreditKindPaid)).Add(float64(credits))
	s.invalidate(ctx, storeID)
	return nil
}

// Consume 原子扣减额度；余额不足时返回 false 且不写流水
func (s *Service) Consume(ctx context.Context, storeID string, credits int) (bool, error) {
	if credits <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "credits must be positive")
	}

	charged, err := s.credits.AppendConsumption(ctx, storeID, credits)
	if err != nil {
		return false, err
	}
	if charged {
		metrics.CreditsConsumedTotal.Add(float64(credits))
		s.invalidate(ctx, storeID)
	}
	return charged, nil
}

// RecordRefund 冲销已购额度
func (s *Service) RecordRefund(ctx context.Context, storeID string, credits int, stripePaymentID string) error {
	if credits <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credits must be positive")
	}

	if err := s.credits.Append(ctx, entity.NewRefund(storeID, credits, stripePaymentID)); err != nil {
		return err
	}
	s.invalidate(ctx, storeID)
	return nil
}

// History 分页查询流水
func (s *Service) History(ctx context.Context, storeID string, pagination repository.Pagination) (*repository.PagedResult[*entity.CreditTransaction], error) {
	return s.credits.ListByStoreID(ctx, storeID, pagination)
}

// FindByPaymentID 根据支付单查找流水
func (s *Service) FindByPaymentID(ctx context.Context, paymentID string) (*entity.CreditTransaction, error) {
	return s.credits.GetByStripePaymentID(ctx, paymentID)
}

// invalidate 使店铺余额缓存失效；失败只记日志
func (s *Service) invalidate(ctx context.Context, storeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateStore(ctx, storeID); err != nil {
		logger.Warn(ctx, "failed to invalidate balance cache", "store_id", storeID, "error", err)
	}
}
