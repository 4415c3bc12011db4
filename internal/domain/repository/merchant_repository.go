// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"shop-copy-ai-api/internal/domain/entity"
)

// MerchantRepository 商家仓储接口
type MerchantRepository interface {
	// CreateIfAbsent 按 store_id 幂等创建商家；返回是否实际插入了新记录
	CreateIfAbsent(ctx context.Context, merchant *entity.Merchant) (bool, error)

	// GetByStoreID 根据店铺 ID 获取商家
	GetByStoreID(ctx context.Context, storeID string) (*entity.Merchant, error)

	// GetByAccessToken 根据访问令牌获取商家
	GetByAccessToken(ctx context.Context, token string) (*entity.Merchant, error)

	// UpdateAccessToken 更新访问令牌
	UpdateAccessToken(ctx context.Context, storeID string, token *string) error

	// UpdateMembership 更新会员等级
	UpdateMembership(ctx context.Context, storeID string, membership entity.Membership) error

	// UpdateStripeCustomerID 绑定 Stripe 客户
	UpdateStripeCustomerID(ctx context.Context, storeID, customerID string) error

	// Redact 抹除商家的可识别字段（邮箱、令牌、Stripe 客户），保留记录本身
	Redact(ctx context.Context, storeID string) error

	// Delete 删除商家（GDPR 清理）
	Delete(ctx context.Context, storeID string) error
}
