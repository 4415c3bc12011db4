package postgres

import (
	"context"
	"fmt"
	"time"

	"shop-copy-ai-api/internal/domain/entity"
)

// DescriptionRepository 商品描述仓储实现
type DescriptionRepository struct {
	client *Client
}

// NewDescriptionRepository 创建商品描述仓储
func NewDescriptionRepository(client *Client) *DescriptionRepository {
	return &DescriptionRepository{client: client}
}

// Create 保存一条生成的描述
func (r *DescriptionRepository) Create(ctx context.Context, desc *entity.Description) error {
	ctx, span := tracer.Start(ctx, "postgres.DescriptionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(desc).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create description: %w", err)
	}
	return nil
}

// ListByStoreID 按时间倒序列出店铺全部描述
func (r *DescriptionRepository) ListByStoreID(ctx context.Context, storeID string) ([]*entity.Description, error) {
	ctx, span := tracer.Start(ctx, "postgres.DescriptionRepository.ListByStoreID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var descs []*entity.Description
	if err := db.Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&descs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list descriptions: %w", err)
	}
	return descs, nil
}

// ListByProductID 按时间倒序列出某商品的描述；storeID 为空时不限店铺
func (r *DescriptionRepository) ListByProductID(ctx context.Context, storeID, productID string) ([]*entity.Description, error) {
	ctx, span := tracer.Start(ctx, "postgres.DescriptionRepository.ListByProductID")
	defer span.End()

	db := getDB(ctx, r.client.db).Where("product_id = ?", productID)
	if storeID != "" {
		db = db.Where("store_id = ?", storeID)
	}
	var descs []*entity.Description
	if err := db.Order("created_at DESC").
		Find(&descs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list descriptions by product: %w", err)
	}
	return descs, nil
}

// ListRecentByProductID 列出某商品最近 limit 条描述；storeID 为空时不限店铺
func (r *DescriptionRepository) ListRecentByProductID(ctx context.Context, storeID, productID string, limit int) ([]*entity.Description, error) {
	ctx, span := tracer.Start(ctx, "postgres.DescriptionRepository.ListRecentByProductID")
	defer span.End()

	db := getDB(ctx, r.client.db).Where("product_id = ?", productID)
	if storeID != "" {
		db = db.Where("store_id = ?", storeID)
	}
	var descs []*entity.Description
	if err := db.Order("created_at DESC").
		Limit(limit).
		Find(&descs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list recent descriptions: %w", err)
	}
	return descs, nil
}

// CountSince 统计店铺在 [since, until) 窗口内生成的描述数量
func (r *DescriptionRepository) CountSince(ctx context.Context, storeID string, since, until time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.DescriptionRepository.CountSince")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Description{}).
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, since, until).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count descriptions: %w", err)
	}
	return count, nil
}

// DeleteByStoreID 删除店铺全部描述
func (r *DescriptionRepository) DeleteByStoreID(ctx context.Context, storeID string) error {
	ctx, span := tracer.Start(ctx, "postgres.DescriptionRepository.DeleteByStoreID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Description{}, "store_id = ?", storeID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete descriptions: %w", err)
	}
	return nil
}
