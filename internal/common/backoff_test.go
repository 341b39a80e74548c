package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryConfig_Delay(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    1 * time.Second,
	}

	for attempt := 0; attempt < 10; attempt++ {
		delay := cfg.Delay(attempt)
		assert.GreaterOrEqual(t, delay, cfg.BaseDelay, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, cfg.MaxDelay, "attempt %d", attempt)
	}

	// Later attempts never ask for less than the base doubling floor
	assert.GreaterOrEqual(t, cfg.Delay(2), 400*time.Millisecond)
}

func TestRetryConfig_RetrySucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	err := cfg.Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryConfig_RetryExhausts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	err := cfg.Retry(context.Background(), func() error {
		calls++
		return errors.New("still broken")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestAdaptiveBackoff(t *testing.T) {
	b := NewAdaptiveBackoff(10*time.Millisecond, 80*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, b.Current())

	b.Failure()
	assert.Equal(t, 20*time.Millisecond, b.Current())
	b.Failure()
	b.Failure()
	assert.Equal(t, 80*time.Millisecond, b.Current())
	b.Failure()
	assert.Equal(t, 80*time.Millisecond, b.Current(), "must not exceed ceiling")

	b.Success()
	assert.Equal(t, 40*time.Millisecond, b.Current())
	b.Success()
	b.Success()
	b.Success()
	assert.Equal(t, 10*time.Millisecond, b.Current(), "must not drop below floor")
}

func TestSlidingWindowLimiter(t *testing.T) {
	limiter := NewSlidingWindowLimiter(2, 50*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx))
	require.NoError(t, limiter.Wait(ctx))
	assert.Equal(t, 0, limiter.Available())

	// Third call sleeps until the first call ages out of the window
	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSlidingWindowLimiter_CancelledContext(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, time.Minute)

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
