// Package descriptions 提供描述历史查询服务
package descriptions

import (
	"context"

	"shop-copy-ai-api/internal/application/generation"
	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
	pkgerrors "shop-copy-ai-api/pkg/errors"
)

// Store 描述历史查询服务
type Store struct {
	descriptions repository.DescriptionRepository
	recentLimit  int
}

// NewStore 创建描述查询服务
func NewStore(descriptions repository.DescriptionRepository, recentLimit int) *Store {
	if recentLimit <= 0 {
		recentLimit = 3
	}
	return &Store{
		descriptions: descriptions,
		recentLimit:  recentLimit,
	}
}

// ListByStore 列出店铺全部描述（时间倒序）
func (s *Store) ListByStore(ctx context.Context, storeID string) ([]*entity.Description, error) {
	if storeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	return s.descriptions.ListByStoreID(ctx, storeID)
}

// ListByProduct 列出某商品的描述（时间倒序）；
// 商品 ID 全局唯一，storeID 为空时按商品单独查询
func (s *Store) ListByProduct(ctx context.Context, storeID, productRef string) ([]*entity.Description, error) {
	productID, err := generation.NormalizeProductRef(productRef)
	if err != nil {
		return nil, err
	}
	return s.descriptions.ListByProductID(ctx, storeID, productID)
}

// ListRecentByProduct 列出某商品最近生成的描述；storeID 为空时按商品单独查询
func (s *Store) ListRecentByProduct(ctx context.Context, storeID, productRef string) ([]*entity.Description, error) {
	productID, err := generation.NormalizeProductRef(productRef)
	if err != nil {
		return nil, err
	}
	return s.descriptions.ListRecentByProductID(ctx, storeID, productID, s.recentLimit)
}
