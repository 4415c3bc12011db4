package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
)

// CreditRepository 额度流水仓储实现
type CreditRepository struct {
	client *Client
}

// NewCreditRepository 创建额度流水仓储
func NewCreditRepository(client *Client) *CreditRepository {
	return &CreditRepository{client: client}
}

// Append 追加一条流水
func (r *CreditRepository) Append(ctx context.Context, tx *entity.CreditTransaction) error {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.Append")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(tx).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append credit transaction: %w", err)
	}
	return nil
}

// AppendConsumption 原子地校验余额并追加消耗流水。
// 通过店铺级咨询锁串行化同一店铺的并发扣减：流水表只追加，
// 余额是 SUM 聚合，无法对聚合结果加行锁，只能先锁后算。
func (r *CreditRepository) AppendConsumption(ctx context.Context, storeID string, credits int) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.AppendConsumption")
	defer span.End()

	charged := false
	err := getDB(ctx, r.client.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", storeID).Error; err != nil {
			return fmt.Errorf("failed to acquire store lock: %w", err)
		}

		var balance int64
		if err := tx.Model(&entity.CreditTransaction{}).
			Where("store_id = ?", storeID).
			Select("COALESCE(SUM(credits), 0)").
			Scan(&balance).Error; err != nil {
			return fmt.Errorf("failed to sum credits: %w", err)
		}

		if balance < int64(credits) {
			return nil
		}

		if err := tx.Create(entity.NewConsumption(storeID, credits)).Error; err != nil {
			return fmt.Errorf("failed to record consumption: %w", err)
		}
		charged = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return charged, nil
}

// SumByStoreID 汇总店铺全部流水得到当前余额
func (r *CreditRepository) SumByStoreID(ctx context.Context, storeID string) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.SumByStoreID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var balance int64
	if err := db.Model(&entity.CreditTransaction{}).
		Where("store_id = ?", storeID).
		Select("COALESCE(SUM(credits), 0)").
		Scan(&balance).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to sum credits: %w", err)
	}
	return int(balance), nil
}

// ListByStoreID 按时间倒序分页列出流水
func (r *CreditRepository) ListByStoreID(ctx context.Context, storeID string, pagination repository.Pagination) (*repository.PagedResult[*entity.CreditTransaction], error) {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.ListByStoreID")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var total int64
	if err := db.Model(&entity.CreditTransaction{}).Where("store_id = ?", storeID).Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count credit transactions: %w", err)
	}

	var txs []*entity.CreditTransaction
	if err := db.Where("store_id = ?", storeID).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&txs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list credit transactions: %w", err)
	}

	return repository.NewPagedResult(txs, total, pagination), nil
}

// GetByStripePaymentID 根据支付单查找流水
func (r *CreditRepository) GetByStripePaymentID(ctx context.Context, paymentID string) (*entity.CreditTransaction, error) {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.GetByStripePaymentID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var tx entity.CreditTransaction
	if err := db.First(&tx, "stripe_payment_id = ?", paymentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get transaction by payment: %w", err)
	}
	return &tx, nil
}

// DeleteByStoreID 删除店铺全部流水
func (r *CreditRepository) DeleteByStoreID(ctx context.Context, storeID string) error {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.DeleteByStoreID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.CreditTransaction{}, "store_id = ?", storeID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete credit transactions: %w", err)
	}
	return nil
}
