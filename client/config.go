package client

import (
	"reflect"
	"time"

	"github.com/kbukum/apiq/codec"
	"github.com/kbukum/apiq/logger"
	"github.com/kbukum/apiq/resilience"
	"github.com/kbukum/apiq/transport"
	"github.com/kbukum/apiq/validation"
)

const defaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the required root prepended to every route path.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout is the default per-request deadline. Defaults to 30s.
	// Individual requests can override it with WithTimeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to every request.
	Headers map[string]string `json:"headers" yaml:"headers" mapstructure:"headers"`

	// Auth configures default authentication applied to all requests.
	// Individual requests can override this.
	Auth *AuthConfig `json:"-" yaml:"-" mapstructure:"-"`

	// TLS configures TLS settings for the bound transport.
	TLS *transport.TLSConfig `json:"tls" yaml:"tls" mapstructure:"tls"`

	// Retry configures retry behavior for transport failures. Nil disables
	// retry.
	Retry *resilience.RetryConfig `json:"-" yaml:"-" mapstructure:"-"`

	// RateLimit gates request attempts. Nil disables rate limiting.
	RateLimit *resilience.RateLimiterConfig `json:"-" yaml:"-" mapstructure:"-"`

	// CodecOverrides pin specific types to specific codec strategies,
	// bypassing capability probing. Install them before declaring routes.
	CodecOverrides []CodecOverride `json:"-" yaml:"-" mapstructure:"-"`

	// Logger receives request/response debug logs. Nil means silent.
	Logger *logger.Logger `json:"-" yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
// Requests and responses default to JSON content negotiation.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	if _, ok := c.Headers["Accept"]; !ok {
		c.Headers["Accept"] = "application/json"
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRetryConfig returns a retry config tuned for HTTP calls: only
// transport failures marked retryable (timeouts, connection errors) are
// attempted again.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = transport.IsRetryable
	return &cfg
}

// CodecOverride pins one type to one codec strategy.
type CodecOverride struct {
	// Type is the attached type being overridden.
	Type reflect.Type
	// Codec is the strategy to use for it.
	Codec codec.Codec
}

// OverrideCodec builds a CodecOverride for type T.
func OverrideCodec[T any](c codec.Codec) CodecOverride {
	var proto T
	typ := reflect.TypeOf(proto)
	if typ == nil {
		typ = reflect.TypeOf((*T)(nil)).Elem()
	}
	return CodecOverride{Type: typ, Codec: c}
}
