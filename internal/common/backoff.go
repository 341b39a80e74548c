package common

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig defines bounded exponential backoff with jitter for transient
// external-service errors. Every retry path has an explicit ceiling; nothing
// retries indefinitely.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewDefaultRetryConfig returns retry settings suitable for outbound API calls.
func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// Delay computes the backoff before the given attempt (0-based), doubling from
// BaseDelay and capped at MaxDelay, with up to 25% positive jitter.
func (c RetryConfig) Delay(attempt int) time.Duration {
	delay := c.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= c.MaxDelay {
			delay = c.MaxDelay
			break
		}
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	if delay+jitter > c.MaxDelay {
		return c.MaxDelay
	}
	return delay + jitter
}

// Retry runs fn up to MaxAttempts times, sleeping the backoff delay between
// attempts. The last error is returned once attempts are exhausted.
func (c RetryConfig) Retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.Delay(attempt-1)); err != nil {
				return err
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("retries exhausted after %d attempts: %w", c.MaxAttempts, lastErr)
}

// AdaptiveBackoff throttles batch operations against an unstable downstream:
// the pause halves toward a floor on success and doubles toward a ceiling on
// failure, so sustained instability slows the whole batch instead of
// hammering the service.
type AdaptiveBackoff struct {
	current time.Duration
	floor   time.Duration
	ceiling time.Duration
}

// NewAdaptiveBackoff creates an adaptive backoff starting at the floor.
func NewAdaptiveBackoff(floor, ceiling time.Duration) *AdaptiveBackoff {
	return &AdaptiveBackoff{
		current: floor,
		floor:   floor,
		ceiling: ceiling,
	}
}

// Success halves the pause toward the floor.
func (b *AdaptiveBackoff) Success() {
	b.current /= 2
	if b.current < b.floor {
		b.current = b.floor
	}
}

// Failure doubles the pause toward the ceiling.
func (b *AdaptiveBackoff) Failure() {
	b.current *= 2
	if b.current > b.ceiling {
		b.current = b.ceiling
	}
}

// Current returns the pause to apply before the next batch unit.
func (b *AdaptiveBackoff) Current() time.Duration {
	return b.current
}

// Pause sleeps for the current backoff, returning early on cancellation.
func (b *AdaptiveBackoff) Pause(ctx context.Context) error {
	if b.current <= 0 {
		return nil
	}
	return sleepCtx(ctx, b.current)
}
