package resilience

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
	if rl.Allow() {
		t.Error("request beyond burst should be limited")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 1})

	if !rl.Allow() {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow() {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.Allow() {
		t.Error("bucket should have refilled")
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 50, Burst: 1})
	rl.Allow()

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("wait took too long: %v", elapsed)
	}
}

func TestRateLimiter_WaitCancellation(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1})
	rl.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("expected context error")
	}
}

func TestRateLimiter_OnLimit(t *testing.T) {
	limited := 0
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, OnLimit: func() { limited++ }})

	rl.Allow()
	rl.Allow()
	if limited != 1 {
		t.Errorf("expected 1 limit callback, got %d", limited)
	}
}
