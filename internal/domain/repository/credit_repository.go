package repository

import (
	"context"

	"shop-copy-ai-api/internal/domain/entity"
)

// CreditRepository 额度流水仓储接口
type CreditRepository interface {
	// Append 追加一条流水
	Append(ctx context.Context, tx *entity.CreditTransaction) error

	// AppendConsumption 原子地校验余额并追加消耗流水；
	// 余额不足时不写入并返回 false
	AppendConsumption(ctx context.Context, storeID string, credits int) (bool, error)

	// SumByStoreID 汇总店铺全部流水得到当前余额
	SumByStoreID(ctx context.Context, storeID string) (int, error)

	// ListByStoreID 按时间倒序分页列出流水
	ListByStoreID(ctx context.Context, storeID string, pagination Pagination) (*PagedResult[*entity.CreditTransaction], error)

	// GetByStripePaymentID 根据支付单查找流水
	GetByStripePaymentID(ctx context.Context, paymentID string) (*entity.CreditTransaction, error)

	// DeleteByStoreID 删除店铺全部流水（GDPR 清理）
	DeleteByStoreID(ctx context.Context, storeID string) error
}
