// Package resilience provides retry and rate limiting primitives wired into
// the apiq client.
//
// Retry wraps a single round trip with exponential backoff and jitter; the
// rate limiter is a token bucket gating each attempt. Both are opt-in via
// the client configuration and apply per attempt, never across requests, so
// one request's failure cannot affect its siblings.
package resilience
