package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned by Allow when the bucket is empty.
var ErrRateLimited = errors.New("resilience: rate limit exceeded")

// RateLimiterConfig configures a token bucket rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of requests allowed per second.
	Rate float64
	// Burst is the maximum burst size.
	Burst int
	// OnLimit is called when a request is rate limited.
	OnLimit func()
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{Rate: 10.0, Burst: 20}
}

// RateLimiter is a token bucket limiter gating request attempts.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10.0
	}
	if config.Burst <= 0 {
		config.Burst = int(config.Rate)
	}
	return &RateLimiter{
		config:     config,
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available, without blocking.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	if rl.config.OnLimit != nil {
		rl.config.OnLimit()
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		// Time until one token refills.
		wait := time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second))
		rl.mu.Unlock()

		if rl.config.OnLimit != nil {
			rl.config.OnLimit()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill adds tokens for the time elapsed since the last refill.
// Caller holds rl.mu.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	rl.tokens += elapsed * rl.config.Rate
	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}
