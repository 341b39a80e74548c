package common

import (
	"context"
	"sync"
	"time"
)

// SlidingWindowLimiter enforces a per-API call budget over a rolling window.
// When the window's budget is exhausted, Wait sleeps the caller until the
// oldest call ages out.
type SlidingWindowLimiter struct {
	mu     sync.Mutex
	budget int
	window time.Duration
	calls  []time.Time
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
}

// NewSlidingWindowLimiter creates a limiter allowing budget calls per window.
func NewSlidingWindowLimiter(budget int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		budget: budget,
		window: window,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait blocks until a call slot is available, then records the call.
// Returns early with the context error on cancellation.
func (l *SlidingWindowLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.evict(now)

		if len(l.calls) < l.budget {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}

		// Sleep until the oldest call leaves the window
		wait := l.calls[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Available reports the number of call slots currently free.
func (l *SlidingWindowLimiter) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(l.now())
	return l.budget - len(l.calls)
}

func (l *SlidingWindowLimiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}
