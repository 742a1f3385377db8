package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// Nonblocking launches round trips as soon as they are submitted and lets
// callers await completion through Pending handles. Any number of requests
// may be outstanding at once; completion order is backend-determined.
type Nonblocking struct {
	client *http.Client

	mu      sync.Mutex
	closed  bool
	pending map[*Pending]context.CancelFunc
	wg      sync.WaitGroup
}

// NewNonblocking creates a non-blocking transport.
func NewNonblocking(opts Options) (*Nonblocking, error) {
	client, err := newHTTPClient(opts)
	if err != nil {
		return nil, err
	}
	return &Nonblocking{
		client:  client,
		pending: make(map[*Pending]context.CancelFunc),
	}, nil
}

// Submit puts req in flight immediately and returns its handle. Submitting
// on a closed transport yields a handle that is already failed.
func (t *Nonblocking) Submit(ctx context.Context, req *Request) *Pending {
	p := &Pending{done: make(chan struct{})}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		p.resolve(nil, &Error{Cause: CauseClosed, URL: req.URL, Err: errors.New("transport is closed")})
		return p
	}
	opCtx, cancel := context.WithCancel(ctx)
	t.pending[p] = cancel
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		res, err := roundTrip(opCtx, t.client, req)
		p.resolve(res, err)

		t.mu.Lock()
		delete(t.pending, p)
		t.mu.Unlock()
		cancel()
	}()

	return p
}

// RoundTrip submits req and waits for it, satisfying the Transport
// interface for callers that need call-and-wait semantics.
func (t *Nonblocking) RoundTrip(ctx context.Context, req *Request) (*Result, error) {
	return t.Submit(ctx, req).Wait(ctx)
}

// Close cancels every in-flight request and waits for their goroutines to
// drain. Results that completed before Close stay readable. Idempotent.
func (t *Nonblocking) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	for _, cancel := range t.pending {
		cancel()
	}
	t.mu.Unlock()

	t.wg.Wait()
	t.client.CloseIdleConnections()
	return nil
}

// Pending is the handle for one in-flight request. Wait is the single
// suspension point of the non-blocking model.
type Pending struct {
	done chan struct{}

	once sync.Once
	res  *Result
	err  error
}

func (p *Pending) resolve(res *Result, err error) {
	p.once.Do(func() {
		p.res = res
		p.err = err
		close(p.done)
	})
}

// Wait suspends until the request completes or ctx is done, and returns the
// outcome. Wait may be called any number of times; every call observes the
// same outcome.
func (p *Pending) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return nil, classify(ctx, "", ctx.Err())
	}
}

// Done reports whether the request has completed without suspending.
func (p *Pending) Done() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
