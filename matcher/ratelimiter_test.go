package matcher

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	name    string
	payload ProgressPayload
}

func (p *capturingPublisher) Publish(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	body, _ := payload.(ProgressPayload)
	p.events = append(p.events, publishedEvent{name: event, payload: body})
}

func (p *capturingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

// newTestLimiter wires a limiter to a fake clock; sleeping advances the
// clock instead of blocking, so tests are deterministic and instant.
func newTestLimiter(maxCalls int, window time.Duration, publisher Publisher) (*RateLimiter, *fakeClock, *int) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	sleeps := 0

	limiter := NewRateLimiter(maxCalls, window, publisher, zap.NewNop())
	limiter.now = clock.Now
	limiter.sleep = func(_ context.Context, d time.Duration) error {
		sleeps++
		clock.Advance(d)
		return nil
	}

	return limiter, clock, &sleeps
}

func TestRateLimiterAdmitsUpToCapacity(t *testing.T) {
	limiter, _, sleeps := newTestLimiter(15, time.Minute, &capturingPublisher{})

	for i := 0; i < 15; i++ {
		if err := limiter.Admit(context.Background()); err != nil {
			t.Fatalf("admission %d failed: %v", i+1, err)
		}
	}

	if *sleeps != 0 {
		t.Fatalf("expected no sleeps within capacity, got %d", *sleeps)
	}
}

func TestRateLimiterDelaysSixteenthCall(t *testing.T) {
	limiter, clock, sleeps := newTestLimiter(15, time.Minute, &capturingPublisher{})

	start := clock.Now()
	for i := 0; i < 16; i++ {
		if err := limiter.Admit(context.Background()); err != nil {
			t.Fatalf("admission %d failed: %v", i+1, err)
		}
	}

	if *sleeps == 0 {
		t.Fatalf("expected the 16th admission to wait")
	}
	if elapsed := clock.Now().Sub(start); elapsed < time.Minute {
		t.Fatalf("expected at least the remaining window to elapse, got %v", elapsed)
	}
}

func TestRateLimiterResetsOnElapsedWindow(t *testing.T) {
	limiter, clock, sleeps := newTestLimiter(15, time.Minute, &capturingPublisher{})

	for i := 0; i < 15; i++ {
		if err := limiter.Admit(context.Background()); err != nil {
			t.Fatalf("admission %d failed: %v", i+1, err)
		}
	}

	clock.Advance(61 * time.Second)

	if err := limiter.Admit(context.Background()); err != nil {
		t.Fatalf("admission after window elapse failed: %v", err)
	}
	if *sleeps != 0 {
		t.Fatalf("expected immediate admission after lazy reset, got %d sleeps", *sleeps)
	}
}

func TestRateLimiterPublishesOverloadNotifications(t *testing.T) {
	publisher := &capturingPublisher{}
	limiter, _, _ := newTestLimiter(1, time.Minute, publisher)

	if err := limiter.Admit(context.Background()); err != nil {
		t.Fatalf("first admission failed: %v", err)
	}
	if err := limiter.Admit(context.Background()); err != nil {
		t.Fatalf("blocked admission failed: %v", err)
	}

	events := publisher.Events()
	if len(events) < 2 {
		t.Fatalf("expected periodic overload notifications, got %d", len(events))
	}
	for _, ev := range events {
		if ev.name != EventProgress {
			t.Fatalf("unexpected event name %q", ev.name)
		}
		if !strings.Contains(ev.payload.Message, "overloaded, retrying in") {
			t.Fatalf("unexpected overload message %q", ev.payload.Message)
		}
	}
}

func TestRateLimiterCancelledContext(t *testing.T) {
	publisher := &capturingPublisher{}
	limiter, _, _ := newTestLimiter(1, time.Minute, publisher)
	limiter.sleep = sleepContext

	if err := limiter.Admit(context.Background()); err != nil {
		t.Fatalf("first admission failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Admit(ctx); err == nil {
		t.Fatalf("expected cancelled context to abort the wait")
	}
}
