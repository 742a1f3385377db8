package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/apiq/transport"

// Request is an immutable, fully built request handed to a transport: the
// URL is absolute, headers are flattened, and the body is already encoded.
type Request struct {
	// Method is the HTTP method.
	Method string
	// URL is the absolute request URL, query string included.
	URL string
	// Headers are the flattened request headers.
	Headers map[string]string
	// Body is the encoded request body (nil for body-less requests).
	Body []byte
}

// Result is the raw outcome of a round trip.
type Result struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the flattened response headers.
	Headers map[string]string
	// Body is the complete response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Result) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Result) IsError() bool {
	return r.StatusCode >= 400
}

// Transport executes built requests. Implementations own their connection
// resources; Close releases them and cancels in-flight work.
type Transport interface {
	// RoundTrip executes req and returns the complete result.
	RoundTrip(ctx context.Context, req *Request) (*Result, error)
	// Close releases all transport resources. It is idempotent.
	Close() error
}

// Options configures transport construction.
type Options struct {
	// TLS configures the TLS client settings. Nil uses defaults.
	TLS *TLSConfig
}

// newHTTPClient builds the shared net/http client for a transport.
// No global timeout is set; deadlines ride on the request context.
func newHTTPClient(opts Options) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()

	if opts.TLS != nil {
		tlsCfg, err := opts.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			tr.TLSClientConfig = tlsCfg
		}
	}

	return &http.Client{Transport: tr}, nil
}

// roundTrip performs one traced HTTP exchange and reads the full body.
func roundTrip(ctx context.Context, client *http.Client, req *Request) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("HTTP %s", req.Method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL),
		))
	defer span.End()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &Error{Cause: CauseConnection, URL: req.URL, Err: err}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		terr := classify(ctx, req.URL, err)
		span.RecordError(terr)
		span.SetStatus(codes.Error, terr.Cause.String())
		return nil, terr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := classify(ctx, req.URL, fmt.Errorf("read response body: %w", err))
		span.RecordError(terr)
		span.SetStatus(codes.Error, terr.Cause.String())
		return nil, terr
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	return &Result{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       raw,
	}, nil
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
