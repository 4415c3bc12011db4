package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-copy-ai-api/internal/config"
)

func newTestRetrier(maxAttempts int, sleeps *[]time.Duration) *Retrier {
	return &Retrier{
		policy: config.RetryConfig{
			MaxAttempts: maxAttempts,
			BaseDelay:   10 * time.Second,
			Multiplier:  2.0,
		},
		sleep: func(ctx context.Context, d time.Duration) error {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
			return nil
		},
	}
}

func TestRetrierSucceedsAfterTransientFailures(t *testing.T) {
	var sleeps []time.Duration
	r := newTestRetrier(4, &sleeps)

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("upstream unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	// 退避间隔按倍率递增
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second}, sleeps)
}

func TestRetrierReturnsLastErrorAfterMaxAttempts(t *testing.T) {
	r := newTestRetrier(4, nil)

	calls := 0
	lastErr := errors.New("still failing")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return lastErr
	})

	require.ErrorIs(t, err, lastErr)
	assert.Equal(t, 4, calls)
}

func TestRetrierFirstAttemptHasNoDelay(t *testing.T) {
	var sleeps []time.Duration
	r := newTestRetrier(4, &sleeps)

	err := r.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.Empty(t, sleeps)
}

func TestRetrierStopsWhenContextCancelled(t *testing.T) {
	r := &Retrier{
		policy: config.RetryConfig{MaxAttempts: 4, BaseDelay: 10 * time.Second, Multiplier: 2.0},
		sleep:  sleepContext,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("upstream unavailable")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
