package repository

import (
	"context"
	"time"

	"shop-copy-ai-api/internal/domain/entity"
)

// DescriptionRepository 商品描述仓储接口
type DescriptionRepository interface {
	// Create 保存一条生成的描述
	Create(ctx context.Context, desc *entity.Description) error

	// ListByStoreID 按时间倒序列出店铺全部描述
	ListByStoreID(ctx context.Context, storeID string) ([]*entity.Description, error)

	// ListByProductID 按时间倒序列出某商品的描述；
	// storeID 为空时只按商品查（商品 ID 全局唯一）
	ListByProductID(ctx context.Context, storeID, productID string) ([]*entity.Description, error)

	// ListRecentByProductID 列出某商品最近 limit 条描述；
	// storeID 为空时只按商品查
	ListRecentByProductID(ctx context.Context, storeID, productID string, limit int) ([]*entity.Description, error)

	// CountSince 统计店铺自 since 起生成的描述数量（每日配额用）
	CountSince(ctx context.Context, storeID string, since, until time.Time) (int64, error)

	// DeleteByStoreID 删除店铺全部描述（GDPR 清理）
	DeleteByStoreID(ctx context.Context, storeID string) error
}
