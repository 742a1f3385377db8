package client

import (
	"fmt"
	"sync"

	"github.com/kbukum/apiq/codec"
	"github.com/kbukum/apiq/router"
	"github.com/kbukum/apiq/transport"
)

// Response holds a completed round trip. The raw body is always available;
// decoding into the route's attached type is deferred until Object or As is
// called and the result is memoized, so repeated access decodes exactly once.
// Any HTTP status yields a Response; error statuses are not transport errors.
type Response struct {
	status  int
	headers map[string]string
	body    []byte
	route   *router.Route

	decodeOnce sync.Once
	object     any
	decodeErr  error
}

func newResponse(res *transport.Result, route *router.Route) *Response {
	return &Response{
		status:  res.StatusCode,
		headers: res.Headers,
		body:    res.Body,
		route:   route,
	}
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.status }

// Headers returns the flattened response headers.
func (r *Response) Headers() map[string]string { return r.headers }

// Header returns the value for the named header, or "".
func (r *Response) Header(name string) string { return r.headers[name] }

// Bytes returns the raw response body.
func (r *Response) Bytes() []byte { return r.body }

// Route returns the route this response was produced for.
func (r *Response) Route() *router.Route { return r.route }

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool { return r.status >= 200 && r.status < 300 }

// IsError reports whether the status code indicates an error (>= 400).
func (r *Response) IsError() bool { return r.status >= 400 }

// Object decodes the body into an instance of the route's attached type
// using the codec bound at declaration time. The first call performs the
// decode; later calls return the same value and error.
func (r *Response) Object() (any, error) {
	r.decodeOnce.Do(func() {
		r.object, r.decodeErr = codec.Decode(r.route.Codec(), r.route.Type(), r.body)
	})
	return r.object, r.decodeErr
}

// As decodes the response body and asserts it to T. It shares the response's
// memoized decode with Object.
func As[T any](r *Response) (T, error) {
	var zero T
	obj, err := r.Object()
	if err != nil {
		return zero, err
	}
	v, ok := obj.(T)
	if !ok {
		return zero, &codec.DecodeError{
			Type:  r.route.Type(),
			Codec: r.route.Codec().Name(),
			Err:   fmt.Errorf("decoded %T, want %T", obj, zero),
		}
	}
	return v, nil
}
