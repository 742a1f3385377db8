package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// Blocking executes each round trip sequentially on the calling goroutine.
type Blocking struct {
	client *http.Client

	mu     sync.Mutex
	closed bool
}

// NewBlocking creates a blocking transport.
func NewBlocking(opts Options) (*Blocking, error) {
	client, err := newHTTPClient(opts)
	if err != nil {
		return nil, err
	}
	return &Blocking{client: client}, nil
}

// RoundTrip executes req and returns the complete result.
func (t *Blocking) RoundTrip(ctx context.Context, req *Request) (*Result, error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, &Error{Cause: CauseClosed, URL: req.URL, Err: errors.New("transport is closed")}
	}
	return roundTrip(ctx, t.client, req)
}

// Close releases idle connections. Idempotent.
func (t *Blocking) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.client.CloseIdleConnections()
	return nil
}
