package generation

import (
	"context"
	"time"

	"shop-copy-ai-api/internal/config"
	"shop-copy-ai-api/pkg/metrics"
)

// Retrier 带指数退避的重试执行器。
// 第 n 次失败后等待 BaseDelay * Multiplier^n 再重试，
// 共尝试 MaxAttempts 次，最后一次的错误原样返回。
type Retrier struct {
	policy config.RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrier 创建重试执行器
func NewRetrier(policy config.RetryConfig) *Retrier {
	return &Retrier{
		policy: policy,
		sleep:  sleepContext,
	}
}

// Do 执行 fn，失败时按退避策略重试
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	maxAttempts := r.policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	delay := r.policy.BaseDelay
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.AIRetryTotal.Inc()
			if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
				return sleepErr
			}
			delay = time.Duration(float64(delay) * r.policy.Multiplier)
		}

		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}

// sleepContext 可被取消的睡眠
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
