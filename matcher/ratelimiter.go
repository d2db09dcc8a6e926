package matcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// pollInterval is how long a blocked caller waits between
	// admission attempts.
	pollInterval = 1 * time.Second

	// notifyInterval is how often a blocked caller publishes an
	// advisory overload event.
	notifyInterval = 5 * time.Second
)

// RateLimiter tracks evaluator calls in a rolling time window shared by
// all concurrent match runs; the external model's quota is account-wide,
// not per-run. It never fails, it only delays. The window is reset
// lazily on admission attempts, never by a background timer.
type RateLimiter struct {
	mu          sync.Mutex
	maxCalls    int
	window      time.Duration
	count       int
	windowStart time.Time

	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	publisher Publisher
	logger    *zap.Logger
}

// NewRateLimiter creates a limiter admitting at most maxCalls per
// rolling window. Advisory delay notifications go to publisher.
func NewRateLimiter(maxCalls int, window time.Duration, publisher Publisher, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		maxCalls:  maxCalls,
		window:    window,
		now:       time.Now,
		sleep:     sleepContext,
		publisher: publisher,
		logger:    logger,
	}
}

// Admit blocks until the rolling window has capacity, then records the
// caller's upcoming call. Multiple blocked callers are not ordered; any
// of them may proceed first once capacity frees. The returned error is
// non-nil only when ctx is cancelled while waiting.
func (r *RateLimiter) Admit(ctx context.Context) error {
	var lastNotify time.Time

	for {
		r.mu.Lock()
		now := r.now()

		if r.windowStart.IsZero() || now.Sub(r.windowStart) >= r.window {
			r.count = 0
			r.windowStart = now
		}

		if r.count < r.maxCalls {
			r.count++
			r.mu.Unlock()
			return nil
		}

		remaining := r.window - now.Sub(r.windowStart)
		r.mu.Unlock()

		if lastNotify.IsZero() || now.Sub(lastNotify) >= notifyInterval {
			seconds := int(remaining.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			r.publisher.Publish(EventProgress, ProgressPayload{
				Success: true,
				Message: fmt.Sprintf("Matcher is overloaded, retrying in %ds.", seconds),
			})
			r.logger.Debug("rate limiter saturated",
				zap.Int("max_calls", r.maxCalls),
				zap.Duration("remaining", remaining))
			lastNotify = now
		}

		if err := r.sleep(ctx, pollInterval); err != nil {
			return err
		}
	}
}

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
