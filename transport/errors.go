package transport

import (
	"context"
	"errors"
	"fmt"
)

// Cause classifies transport failures.
type Cause int

const (
	// CauseConnection indicates a connect, DNS, or read failure.
	CauseConnection Cause = iota
	// CauseTimeout indicates the request's deadline expired.
	CauseTimeout
	// CauseCanceled indicates the request's context was canceled.
	CauseCanceled
	// CauseClosed indicates the transport was closed before or during the
	// request.
	CauseClosed
)

// String returns the cause name.
func (c Cause) String() string {
	switch c {
	case CauseConnection:
		return "connection"
	case CauseTimeout:
		return "timeout"
	case CauseCanceled:
		return "canceled"
	case CauseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Error is a transport-level failure. It exists only when no Result could be
// produced; HTTP error statuses are not transport errors.
type Error struct {
	// Cause classifies the failure.
	Cause Cause
	// URL is the request URL, when known.
	URL string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("transport: %s: %s: %v", e.Cause, e.URL, e.Err)
	}
	return fmt.Sprintf("transport: %s: %v", e.Cause, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failed operation may be retried.
func (e *Error) Retryable() bool {
	return e.Cause == CauseTimeout || e.Cause == CauseConnection
}

// classify maps a failed round trip to a typed error, consulting the
// context to distinguish deadline expiry from plain connection failures.
func classify(ctx context.Context, url string, err error) *Error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return &Error{Cause: CauseTimeout, URL: url, Err: err}
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		return &Error{Cause: CauseCanceled, URL: url, Err: err}
	default:
		return &Error{Cause: CauseConnection, URL: url, Err: err}
	}
}

// IsTimeout checks if an error is a transport timeout.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Cause == CauseTimeout
}

// IsCanceled checks if an error is a cancellation.
func IsCanceled(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Cause == CauseCanceled
}

// IsConnection checks if an error is a connection failure.
func IsConnection(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Cause == CauseConnection
}

// IsClosed checks if an error was caused by a closed transport.
func IsClosed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Cause == CauseClosed
}

// IsRetryable checks if an error is a retryable transport failure.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}
