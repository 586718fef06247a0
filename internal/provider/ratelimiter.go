package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by the goroutines of one provider.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   int
	burst    int
	every    time.Duration
	refilled time.Time
	now      func() time.Time
}

// NewRateLimiter allows burst calls at once and one more per every.
func NewRateLimiter(burst int, every time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		tokens:   burst,
		burst:    burst,
		every:    every,
		refilled: time.Now(),
		now:      time.Now,
	}
}

// Wait blocks until a token is taken or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay, ok := r.take()
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take consumes a token, or returns how long until the next one is due.
func (r *RateLimiter) take() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.every <= 0 {
		return 0, true
	}
	now := r.now()
	if n := int(now.Sub(r.refilled) / r.every); n > 0 {
		r.tokens = min(r.burst, r.tokens+n)
		r.refilled = r.refilled.Add(time.Duration(n) * r.every)
	}
	if r.tokens > 0 {
		r.tokens--
		return 0, true
	}
	return r.refilled.Add(r.every).Sub(now), false
}
