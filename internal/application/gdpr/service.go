// Package gdpr 提供合规数据导出与清除
package gdpr

import (
	"context"
	"time"

	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
	pkgerrors "shop-copy-ai-api/pkg/errors"
	"shop-copy-ai-api/pkg/logger"
)

// exportPageSize 导出时流水的分页步长；导出必须覆盖全部流水
const exportPageSize = 100

// ExportResult 店铺数据导出结果
type ExportResult struct {
	Merchant     *entity.Merchant            `json:"merchant"`
	Transactions []*entity.CreditTransaction `json:"transactions"`
	Descriptions []*entity.Description       `json:"descriptions"`
}

// RedactResult 抹除操作结果
type RedactResult struct {
	StoreID    string    `json:"store_id"`
	Redacted   bool      `json:"redacted"`
	RedactedAt time.Time `json:"redacted_at"`
}

// DeletionResult 删除操作的分项结果。每类资源独立尽力删除，
// 单项失败不阻止其余删除，调用方按分项结果对账。
type DeletionResult struct {
	StoreID             string `json:"store_id"`
	MerchantDeleted     bool   `json:"merchant_deleted"`
	CreditsDeleted      bool   `json:"credits_deleted"`
	DescriptionsDeleted bool   `json:"descriptions_deleted"`
	PaymentDataNote     string `json:"payment_data_note"`
}

// Service 合规数据服务
type Service struct {
	merchants    repository.MerchantRepository
	credits      repository.CreditRepository
	descriptions repository.DescriptionRepository
}

// NewService 创建合规数据服务
func NewService(
	merchants repository.MerchantRepository,
	credits repository.CreditRepository,
	descriptions repository.DescriptionRepository,
) *Service {
	return &Service{
		merchants:    merchants,
		credits:      credits,
		descriptions: descriptions,
	}
}

// Export 导出店铺的全部个人数据，流水逐页取完不截断
func (s *Service) Export(ctx context.Context, storeID string) (*ExportResult, error) {
	merchant, err := s.merchants.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}

	var txs []*entity.CreditTransaction
	for page := 1; ; page++ {
		batch, err := s.credits.ListByStoreID(ctx, storeID, repository.NewPagination(page, exportPageSize))
		if err != nil {
			return nil, err
		}
		txs = append(txs, batch.Items...)
		if len(batch.Items) < exportPageSize || int64(len(txs)) >= batch.Total {
			break
		}
	}

	descs, err := s.descriptions.ListByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		Merchant:     merchant,
		Transactions: txs,
		Descriptions: descs,
	}, nil
}

// Redact 抹除店铺的可识别信息（邮箱、令牌、Stripe 客户），保留账务记录
func (s *Service) Redact(ctx context.Context, storeID string) (*RedactResult, error) {
	merchant, err := s.merchants.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}

	if err := s.merchants.Redact(ctx, storeID); err != nil {
		return nil, err
	}

	logger.Info(ctx, "merchant data redacted", "store_id", storeID)
	return &RedactResult{
		StoreID:    storeID,
		Redacted:   true,
		RedactedAt: time.Now(),
	}, nil
}

// Delete 删除店铺的全部数据，返回分项结果
func (s *Service) Delete(ctx context.Context, storeID string) (*DeletionResult, error) {
	merchant, err := s.merchants.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}

	result := &DeletionResult{
		StoreID:         storeID,
		PaymentDataNote: "stripe data retained for compliance",
	}

	if err := s.descriptions.DeleteByStoreID(ctx, storeID); err != nil {
		logger.Error(ctx, "failed to delete descriptions", err, "store_id", storeID)
	} else {
		result.DescriptionsDeleted = true
	}
	if err := s.credits.DeleteByStoreID(ctx, storeID); err != nil {
		logger.Error(ctx, "failed to delete credit transactions", err, "store_id", storeID)
	} else {
		result.CreditsDeleted = true
	}
	if err := s.merchants.Delete(ctx, storeID); err != nil {
		logger.Error(ctx, "failed to delete merchant", err, "store_id", storeID)
	} else {
		result.MerchantDeleted = true
	}

	logger.Info(ctx, "store data deletion finished",
		"store_id", storeID,
		"merchant_deleted", result.MerchantDeleted,
		"credits_deleted", result.CreditsDeleted,
		"descriptions_deleted", result.DescriptionsDeleted,
	)
	return result, nil
}
