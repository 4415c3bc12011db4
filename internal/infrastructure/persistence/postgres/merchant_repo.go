package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shop-copy-ai-api/internal/domain/entity"
)

// MerchantRepository 商家仓储实现
type MerchantRepository struct {
	client *Client
}

// NewMerchantRepository 创建商家仓储
func NewMerchantRepository(client *Client) *MerchantRepository {
	return &MerchantRepository{client: client}
}

// CreateIfAbsent 按 store_id 幂等创建商家；已存在时不报错，返回是否实际插入
func (r *MerchantRepository) CreateIfAbsent(ctx context.Context, merchant *entity.Merchant) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.MerchantRepository.CreateIfAbsent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}},
		DoNothing: true,
	}).Create(merchant)
	if result.Error != nil {
		span.RecordError(result.Error)
		return false, fmt.Errorf("failed to create merchant: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetByStoreID 根据店铺 ID 获取商家
func (r *MerchantRepository) GetByStoreID(ctx context.Context, storeID string) (*entity.Merchant, error) {
	ctx, span := tracer.Start(ctx, "postgres.MerchantRepository.GetByStoreID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var merchant entity.Merchant
	if err := db.First(&merchant, "store_id = ?", storeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &merchant, nil
}

// GetByAccessToken 根据访问令牌获取商家
func (r *MerchantRepository) GetByAccessToken(ctx context.Context, token string) (*entity.Merchant, error) {
	ctx, span := tracer.Start(ctx, "postgres.MerchantRepository.GetByAccessToken")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var merchant entity.Merchant
	if err := db.First(&merchant, "access_token = ?", token).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get merchant by token: %w", err)
	}
	return &merchant, nil
}

// UpdateAccessToken 更新访问令牌；token 为 nil 时清除
func (r *MerchantRepository) UpdateAccessToken(ctx context.Context, storeID string, token *string) error {
	ctx, span := tracer.Start(ctx, "postgres.MerchantRepository.UpdateAccessToken")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Merchant{}).Where("store_id = ?", storeID).Update("access_token", token).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update access token: %w", err)
	}
	return nil
}

// UpdateMembership 更新会员等级
func (r *MerchantRepository) UpdateMembership(ctx context.Context, storeID string, membership entity.Membership) error {
	ctx, span := tracer.Start(ctx, "postgres.MerchantRepository.UpdateMembership")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Merchant{}).Where("store_id = ?", storeID).Update("membership", membership).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return nil
}

// UpdateStripeCustomerID 绑定 Stripe 客户
func (r *MerchantRepository) UpdateStripeCustomerID(ctx context.Context, storeID, customerID string) error {
	ctx, span := tracer.Start(ctx, "postgres.MerchantRepository.UpdateStripeCustomerID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Merchant{}).Where("store_id = ?", storeID).Update("stripe_customer_id", customerID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update stripe customer: %w", err)
	}
	return nil
}

// Redact 抹除商家的可识别字段，账务流水保持可对账
func (r *MerchantRepository) Redact(ctx context.Context, storeID string) error {
	ctx, span := tracer.Start(ctx, "postgres.MerchantRepository.Redact")
	defer span.End()

	db := getDB(ctx, r.client.db)
	updates := map[string]interface{}{
		"email":              entity.RedactedEmail,
		"access_token":       nil,
		"stripe_customer_id": nil,
		"membership":         entity.MembershipFree,
	}
	if err := db.Model(&entity.Merchant{}).Where("store_id = ?", storeID).Updates(updates).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to redact merchant: %w", err)
	}
	return nil
}

// Delete 删除商家
func (r *MerchantRepository) Delete(ctx context.Context, storeID string) error {
	ctx, span := tracer.Start(ctx, "postgres.MerchantRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Merchant{}, "store_id = ?", storeID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete merchant: %w", err)
	}
	return nil
}
