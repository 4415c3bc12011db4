// Package usage 提供每日用量治理
package usage

import (
	"context"
	"fmt"
	"time"

	"shop-copy-ai-api/internal/domain/repository"
	pkgerrors "shop-copy-ai-api/pkg/errors"
)

// Governor 每日生成配额检查器。
// 配额窗口是本地自然日 [当日零点, 次日零点)，以描述落库时间计数。
type Governor struct {
	descriptions repository.DescriptionRepository
	dailyQuota   int
	now          func() time.Time
}

// NewGovernor 创建用量检查器
func NewGovernor(descriptions repository.DescriptionRepository, dailyQuota int) *Governor {
	return &Governor{
		descriptions: descriptions,
		dailyQuota:   dailyQuota,
		now:          time.Now,
	}
}

// AssertWithinDailyQuota 检查店铺当日配额是否已耗尽
func (g *Governor) AssertWithinDailyQuota(ctx context.Context, storeID string) error {
	if g.dailyQuota <= 0 {
		return nil
	}

	used, err := g.usedToday(ctx, storeID)
	if err != nil {
		return err
	}
	if used >= int64(g.dailyQuota) {
		return pkgerrors.New(pkgerrors.CodeUsageLimitReached, "daily usage limit reached").
			WithDetail(fmt.Sprintf("used=%d max=%d", used, g.dailyQuota))
	}
	return nil
}

// Remaining 当日剩余配额
func (g *Governor) Remaining(ctx context.Context, storeID string) (int, error) {
	if g.dailyQuota <= 0 {
		return 0, nil
	}

	used, err := g.usedToday(ctx, storeID)
	if err != nil {
		return 0, err
	}
	remaining := g.dailyQuota - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (g *Governor) usedToday(ctx context.Context, storeID string) (int64, error) {
	now := g.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)
	return g.descriptions.CountSince(ctx, storeID, start, end)
}
