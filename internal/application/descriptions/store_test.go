package descriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-copy-ai-api/internal/domain/entity"
	pkgerrors "shop-copy-ai-api/pkg/errors"
)

type memDescriptionRepo struct {
	descs []*entity.Description

	lastLimit int
}

func (r *memDescriptionRepo) Create(ctx context.Context, desc *entity.Description) error {
	r.descs = append(r.descs, desc)
	return nil
}

func (r *memDescriptionRepo) ListByStoreID(ctx context.Context, storeID string) ([]*entity.Description, error) {
	var out []*entity.Description
	for _, d := range r.descs {
		if d.StoreID == storeID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDescriptionRepo) ListByProductID(ctx context.Context, storeID, productID string) ([]*entity.Description, error) {
	var out []*entity.Description
	for _, d := range r.descs {
		if d.ProductID != productID {
			continue
		}
		if storeID != "" && d.StoreID != storeID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *memDescriptionRepo) ListRecentByProductID(ctx context.Context, storeID, productID string, limit int) ([]*entity.Description, error) {
	r.lastLimit = limit
	out, _ := r.ListByProductID(ctx, storeID, productID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memDescriptionRepo) CountSince(ctx context.Context, storeID string, since, until time.Time) (int64, error) {
	return 0, nil
}

func (r *memDescriptionRepo) DeleteByStoreID(ctx context.Context, storeID string) error {
	return nil
}

func TestListByProductNormalizesGID(t *testing.T) {
	repo := &memDescriptionRepo{}
	repo.descs = append(repo.descs,
		&entity.Description{StoreID: "store-1", ProductID: "999", Body: "a"},
		&entity.Description{StoreID: "store-1", ProductID: "123", Body: "b"},
		&entity.Description{StoreID: "store-2", ProductID: "999", Body: "c"},
	)
	store := NewStore(repo, 3)

	out, err := store.ListByProduct(context.Background(), "store-1", "gid://shopify/Product/999")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Body)
}

func TestListRecentUsesConfiguredLimit(t *testing.T) {
	repo := &memDescriptionRepo{}
	for i := 0; i < 5; i++ {
		repo.descs = append(repo.descs, &entity.Description{StoreID: "store-1", ProductID: "1"})
	}
	store := NewStore(repo, 3)

	out, err := store.ListRecentByProduct(context.Background(), "store-1", "1")
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, 3, repo.lastLimit)
}

func TestStoreDefaultsRecentLimit(t *testing.T) {
	repo := &memDescriptionRepo{}
	store := NewStore(repo, 0)

	_, err := store.ListRecentByProduct(context.Background(), "store-1", "1")
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastLimit)
}

func TestListByProductWithoutStoreScope(t *testing.T) {
	repo := &memDescriptionRepo{}
	repo.descs = append(repo.descs,
		&entity.Description{StoreID: "store-1", ProductID: "999", Body: "a"},
		&entity.Description{StoreID: "store-2", ProductID: "999", Body: "b"},
		&entity.Description{StoreID: "store-2", ProductID: "123", Body: "c"},
	)
	store := NewStore(repo, 3)
	ctx := context.Background()

	// 商品 ID 全局唯一，不带店铺作用域时按商品查全量
	out, err := store.ListByProduct(ctx, "", "999")
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = store.ListRecentByProduct(ctx, "", "999")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestStoreValidation(t *testing.T) {
	store := NewStore(&memDescriptionRepo{}, 3)
	ctx := context.Background()

	_, err := store.ListByStore(ctx, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = store.ListByProduct(ctx, "store-1", "gid://shopify/Product/xyz")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
