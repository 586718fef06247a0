package provider

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterBurst(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatalf("burst waits should not block")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)
	clock := time.Now()
	limiter.refilled = clock
	limiter.now = func() time.Time { return clock }

	if _, ok := limiter.take(); !ok {
		t.Fatal("expected initial token")
	}
	delay, ok := limiter.take()
	if ok || delay != time.Second {
		t.Fatalf("expected 1s until next token, got %v ok=%v", delay, ok)
	}

	clock = clock.Add(2500 * time.Millisecond)
	if _, ok := limiter.take(); !ok {
		t.Fatal("expected token after refill")
	}
	if _, ok := limiter.take(); ok {
		t.Fatal("burst of 1 must cap refilled tokens")
	}
}

func TestRateLimiterHonorsContext(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)
	_ = limiter.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatalf("wait should stop after context cancellation")
	}
}

func TestRateLimiterUnlimited(t *testing.T) {
	limiter := NewRateLimiter(1, 0)
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
