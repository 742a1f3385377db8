package client

import (
	"net/http"
	"strings"
	"sync"

	"github.com/kbukum/apiq/codec"
	"github.com/kbukum/apiq/config"
	"github.com/kbukum/apiq/logger"
	"github.com/kbukum/apiq/resilience"
	"github.com/kbukum/apiq/router"
)

// Client composes the route registry, codec registry, and scope state. It
// holds at most one bound transport at a time.
type Client struct {
	config  Config
	router  *router.Router
	codecs  *codec.Registry
	log     *logger.Logger
	limiter *resilience.RateLimiter

	mu    sync.Mutex
	scope *Scope // nil while no scope is active
}

// New creates a client from the given configuration. No transport is bound
// until a scope is entered.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codecs := codec.NewRegistry()
	for _, o := range cfg.CodecOverrides {
		codecs.Override(o.Type, o.Codec)
	}

	c := &Client{
		config: cfg,
		codecs: codecs,
		router: router.New(router.WithRegistry(codecs)),
		log:    cfg.Logger,
	}
	if cfg.RateLimit != nil {
		c.limiter = resilience.NewRateLimiter(*cfg.RateLimit)
	}
	return c, nil
}

// NewFromEnv builds a client from apiq.yml, an optional .env file, and
// APIQ_-prefixed environment variables.
func NewFromEnv(opts ...config.Option) (*Client, error) {
	var cfg Config
	if err := config.Load(&cfg, opts...); err != nil {
		return nil, err
	}
	return New(cfg)
}

// Router returns the client's root router. Declare routes on it directly,
// or build standalone routers and mount them with Include.
func (c *Client) Router() *router.Router {
	return c.router
}

// Include copies every route of sub into the client's root router under
// prefix. Declaration-time errors (collisions, unsupported attached types)
// surface here, before any request is made.
func (c *Client) Include(sub *router.Router, prefix string) error {
	return c.router.Include(sub, prefix)
}

// Registry returns the client's codec registry.
func (c *Client) Registry() *codec.Registry {
	return c.codecs
}

// Get issues a GET request for path inside the active scope.
func (c *Client) Get(path string, opts ...CallOption) (*Request, error) {
	return c.Do(http.MethodGet, path, opts...)
}

// Post issues a POST request for path inside the active scope.
func (c *Client) Post(path string, opts ...CallOption) (*Request, error) {
	return c.Do(http.MethodPost, path, opts...)
}

// Put issues a PUT request for path inside the active scope.
func (c *Client) Put(path string, opts ...CallOption) (*Request, error) {
	return c.Do(http.MethodPut, path, opts...)
}

// Patch issues a PATCH request for path inside the active scope.
func (c *Client) Patch(path string, opts ...CallOption) (*Request, error) {
	return c.Do(http.MethodPatch, path, opts...)
}

// Delete issues a DELETE request for path inside the active scope.
func (c *Client) Delete(path string, opts ...CallOption) (*Request, error) {
	return c.Do(http.MethodDelete, path, opts...)
}

// Do resolves (method, path) against the router and builds the request; in
// a non-blocking scope the request goes in flight immediately. With no
// active scope it returns *ScopeError; with no matching route,
// *router.NotFoundError.
func (c *Client) Do(method, path string, opts ...CallOption) (*Request, error) {
	scope, err := c.activeScope(strings.ToLower(method))
	if err != nil {
		return nil, err
	}
	return newRequest(c, scope, method, path, opts)
}

// activeScope returns the current scope, or a ScopeError for op.
func (c *Client) activeScope(op string) (*Scope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scope == nil {
		return nil, errNoScope(op)
	}
	return c.scope, nil
}
