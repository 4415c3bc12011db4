package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-copy-ai-api/internal/domain/entity"
	pkgerrors "shop-copy-ai-api/pkg/errors"
)

type stubDescriptionRepo struct {
	descs []*entity.Description

	// 记录最近一次计数窗口，便于断言窗口边界
	lastSince time.Time
	lastUntil time.Time
}

func (r *stubDescriptionRepo) Create(ctx context.Context, desc *entity.Description) error {
	r.descs = append(r.descs, desc)
	return nil
}

func (r *stubDescriptionRepo) ListByStoreID(ctx context.Context, storeID string) ([]*entity.Description, error) {
	return nil, nil
}

func (r *stubDescriptionRepo) ListByProductID(ctx context.Context, storeID, productID string) ([]*entity.Description, error) {
	return nil, nil
}

func (r *stubDescriptionRepo) ListRecentByProductID(ctx context.Context, storeID, productID string, limit int) ([]*entity.Description, error) {
	return nil, nil
}

func (r *stubDescriptionRepo) CountSince(ctx context.Context, storeID string, since, until time.Time) (int64, error) {
	r.lastSince = since
	r.lastUntil = until
	var n int64
	for _, d := range r.descs {
		if d.StoreID == storeID && !d.CreatedAt.Before(since) && d.CreatedAt.Before(until) {
			n++
		}
	}
	return n, nil
}

func (r *stubDescriptionRepo) DeleteByStoreID(ctx context.Context, storeID string) error {
	return nil
}

func descAt(storeID string, at time.Time) *entity.Description {
	return &entity.Description{StoreID: storeID, ProductID: "1", Body: "copy", CreatedAt: at}
}

func TestAssertWithinDailyQuota(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.Local)
	repo := &stubDescriptionRepo{}
	g := NewGovernor(repo, 10)
	g.now = func() time.Time { return now }

	for i := 0; i < 9; i++ {
		repo.descs = append(repo.descs, descAt("store-1", now.Add(-time.Duration(i)*time.Minute)))
	}

	require.NoError(t, g.AssertWithinDailyQuota(context.Background(), "store-1"))

	repo.descs = append(repo.descs, descAt("store-1", now))
	err := g.AssertWithinDailyQuota(context.Background(), "store-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUsageLimitReached))
}

func TestDailyQuotaIgnoresPreviousDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 30, 0, 0, time.Local)
	repo := &stubDescriptionRepo{}
	g := NewGovernor(repo, 10)
	g.now = func() time.Time { return now }

	// 昨天生成的 10 条不占用今天的配额
	yesterday := now.AddDate(0, 0, -1)
	for i := 0; i < 10; i++ {
		repo.descs = append(repo.descs, descAt("store-1", yesterday))
	}

	require.NoError(t, g.AssertWithinDailyQuota(context.Background(), "store-1"))

	remaining, err := g.Remaining(context.Background(), "store-1")
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}

func TestDailyQuotaWindowIsLocalCalendarDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 59, 0, 0, time.Local)
	repo := &stubDescriptionRepo{}
	g := NewGovernor(repo, 10)
	g.now = func() time.Time { return now }

	_, err := g.Remaining(context.Background(), "store-1")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local), repo.lastSince)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.Local), repo.lastUntil)
}

func TestDailyQuotaScopedPerStore(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	repo := &stubDescriptionRepo{}
	g := NewGovernor(repo, 1)
	g.now = func() time.Time { return now }

	repo.descs = append(repo.descs, descAt("store-1", now))

	err := g.AssertWithinDailyQuota(context.Background(), "store-1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUsageLimitReached))
	assert.NoError(t, g.AssertWithinDailyQuota(context.Background(), "store-2"))
}

func TestDisabledQuotaAlwaysPasses(t *testing.T) {
	repo := &stubDescriptionRepo{}
	g := NewGovernor(repo, 0)

	assert.NoError(t, g.AssertWithinDailyQuota(context.Background(), "store-1"))
}
