package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/apiq/logger"
	"github.com/kbukum/apiq/resilience"
	"github.com/kbukum/apiq/router"
	"github.com/kbukum/apiq/transport"
	"github.com/kbukum/apiq/version"
)

// callOptions collects per-call arguments.
type callOptions struct {
	pathParams map[string]string
	query      map[string]string
	headers    map[string]string
	body       any
	hasBody    bool
	timeout    time.Duration
	auth       *AuthConfig
}

// CallOption configures a single call.
type CallOption func(*callOptions)

// WithPathParam supplies a value for one {name} template parameter.
func WithPathParam(name, value string) CallOption {
	return func(o *callOptions) {
		if o.pathParams == nil {
			o.pathParams = make(map[string]string)
		}
		o.pathParams[name] = value
	}
}

// WithPathParams supplies values for several template parameters.
func WithPathParams(params map[string]string) CallOption {
	return func(o *callOptions) {
		if o.pathParams == nil {
			o.pathParams = make(map[string]string, len(params))
		}
		for k, v := range params {
			o.pathParams[k] = v
		}
	}
}

// WithQuery adds one query parameter.
func WithQuery(name, value string) CallOption {
	return func(o *callOptions) {
		if o.query == nil {
			o.query = make(map[string]string)
		}
		o.query[name] = value
	}
}

// WithQueryParams adds several query parameters.
func WithQueryParams(params map[string]string) CallOption {
	return func(o *callOptions) {
		if o.query == nil {
			o.query = make(map[string]string, len(params))
		}
		for k, v := range params {
			o.query[k] = v
		}
	}
}

// WithHeader adds a request-specific header, overriding client defaults.
func WithHeader(name, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[name] = value
	}
}

// WithBody supplies the request body, encoded via the route's codec. The
// body is always explicit; nothing is inferred from the attached type.
func WithBody(body any) CallOption {
	return func(o *callOptions) {
		o.body = body
		o.hasBody = true
	}
}

// WithTimeout overrides the client's default deadline for this call only.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) { o.timeout = d }
}

// WithAuth overrides the client-level authentication for this call.
func WithAuth(auth *AuthConfig) CallOption {
	return func(o *callOptions) { o.auth = auth }
}

// Request is an immutable description of one call. In a non-blocking scope
// it is already in flight by the time the caller holds it.
type Request struct {
	id      string
	client  *Client
	scope   *Scope
	route   *router.Route
	params  router.PathParams
	treq    *transport.Request
	timeout time.Duration
	mode    Mode

	// blocking execution state
	once sync.Once
	// nonblocking completion signal
	done chan struct{}

	resp *Response
	err  error
}

// newRequest resolves the route, builds the wire request, and launches it
// when the scope is non-blocking.
func newRequest(c *Client, scope *Scope, method, path string, opts []CallOption) (*Request, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	concrete, err := substitutePath(path, o.pathParams)
	if err != nil {
		return nil, err
	}

	route, params, err := c.router.Resolve(method, concrete)
	if err != nil {
		return nil, err
	}

	treq, err := buildTransportRequest(c, route, method, concrete, &o)
	if err != nil {
		return nil, err
	}

	timeout := o.timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}

	r := &Request{
		id:      uuid.NewString(),
		client:  c,
		scope:   scope,
		route:   route,
		params:  params,
		treq:    treq,
		timeout: timeout,
		mode:    scope.Mode(),
	}

	if r.mode == ModeNonblocking {
		r.launch()
	}
	return r, nil
}

// ID returns the request's correlation id.
func (r *Request) ID() string { return r.id }

// Method returns the HTTP method.
func (r *Request) Method() string { return r.treq.Method }

// URL returns the fully substituted request URL.
func (r *Request) URL() string { return r.treq.URL }

// Route returns the resolved route.
func (r *Request) Route() *router.Route { return r.route }

// PathParams returns the parameter values extracted during resolution.
func (r *Request) PathParams() router.PathParams { return r.params }

// Response yields the request's response. In a blocking scope this executes
// the round trip on the calling goroutine; in a non-blocking scope it is the
// suspension point awaiting the in-flight request. Response may be called
// repeatedly; every call observes the same outcome.
func (r *Request) Response(ctx context.Context) (*Response, error) {
	if r.mode == ModeNonblocking {
		select {
		case <-r.done:
			return r.resp, r.err
		case <-ctx.Done():
			return nil, &transport.Error{Cause: transport.CauseCanceled, URL: r.treq.URL, Err: ctx.Err()}
		}
	}

	r.once.Do(func() {
		res, err := r.execute(ctx)
		if err != nil {
			r.err = err
			return
		}
		r.resp = newResponse(res, r.route)
	})
	return r.resp, r.err
}

// launch puts the request in flight on its own goroutine. The transport
// cancels it if the scope exits first.
func (r *Request) launch() {
	r.done = make(chan struct{})
	go func() {
		res, err := r.execute(context.Background())
		if err != nil {
			r.err = err
		} else {
			r.resp = newResponse(res, r.route)
		}
		close(r.done)
	}()
}

// execute runs one round trip with the effective timeout, rate limiting,
// and retry policy applied.
func (r *Request) execute(ctx context.Context) (*transport.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	attempt := func() (*transport.Result, error) {
		if r.client.limiter != nil {
			if err := r.client.limiter.Wait(ctx); err != nil {
				return nil, &transport.Error{Cause: transport.CauseCanceled, URL: r.treq.URL, Err: err}
			}
		}
		return r.scope.tr.RoundTrip(ctx, r.treq)
	}

	start := time.Now()
	var res *transport.Result
	var err error
	if r.client.config.Retry != nil {
		res, err = resilience.Retry(ctx, *r.client.config.Retry, attempt)
	} else {
		res, err = attempt()
	}

	fields := logger.Fields(
		logger.FieldRequestID, r.id,
		logger.FieldMethod, r.treq.Method,
		logger.FieldURL, r.treq.URL,
		logger.FieldRoute, r.route.Template(),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		r.client.log.Debug("request failed", fields)
		return nil, err
	}
	fields[logger.FieldStatus] = res.StatusCode
	r.client.log.Debug("request completed", fields)
	return res, nil
}

// substitutePath fills {name} placeholders in path from params. Missing or
// unused parameters are construction-time errors.
func substitutePath(path string, params map[string]string) (string, error) {
	if !strings.Contains(path, "{") {
		if len(params) > 0 {
			return "", fmt.Errorf("client: path %q has no parameters, but %d were supplied", path, len(params))
		}
		return path, nil
	}

	parts := strings.Split(path, "/")
	used := make(map[string]bool, len(params))
	for i, p := range parts {
		if !strings.HasPrefix(p, "{") || !strings.HasSuffix(p, "}") {
			continue
		}
		name := p[1 : len(p)-1]
		value, ok := params[name]
		if !ok {
			return "", fmt.Errorf("client: missing value for path parameter %q in %q", name, path)
		}
		parts[i] = url.PathEscape(value)
		used[name] = true
	}
	for name := range params {
		if !used[name] {
			return "", fmt.Errorf("client: unknown path parameter %q for %q", name, path)
		}
	}
	return strings.Join(parts, "/"), nil
}

// buildTransportRequest assembles the immutable wire request.
func buildTransportRequest(c *Client, route *router.Route, method, path string, o *callOptions) (*transport.Request, error) {
	headers := make(map[string]string, len(c.config.Headers)+len(o.headers)+2)
	for k, v := range c.config.Headers {
		headers[k] = v
	}
	if _, ok := headers["User-Agent"]; !ok {
		headers["User-Agent"] = version.UserAgent()
	}
	for k, v := range o.headers {
		headers[k] = v
	}

	query := url.Values{}
	for k, v := range o.query {
		query.Set(k, v)
	}

	auth := c.config.Auth
	if o.auth != nil {
		auth = o.auth
	}
	auth.apply(headers, query)

	var body []byte
	if o.hasBody {
		data, err := route.Codec().Marshal(o.body)
		if err != nil {
			return nil, fmt.Errorf("client: encode body for %s %s: %w", method, path, err)
		}
		body = data
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/json"
		}
	}

	full := strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	return &transport.Request{
		Method:  method,
		URL:     full,
		Headers: headers,
		Body:    body,
	}, nil
}
