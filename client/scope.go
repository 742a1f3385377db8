package client

import (
	"sync"

	"github.com/kbukum/apiq/logger"
	"github.com/kbukum/apiq/transport"
)

// Mode is the scheduling model a scope was entered with.
type Mode int

const (
	// ModeBlocking executes each call sequentially on the calling goroutine.
	ModeBlocking Mode = iota
	// ModeNonblocking puts requests in flight at creation and suspends only
	// in Request.Response.
	ModeNonblocking
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeNonblocking {
		return "nonblocking"
	}
	return "blocking"
}

// Scope binds a client to exactly one transport for a bounded lifetime.
// Scopes are not reentrant or nestable: entering a second scope while one
// is active fails with *ScopeError.
type Scope struct {
	client *Client
	mode   Mode
	tr     transport.Transport

	mu     sync.Mutex
	exited bool
}

// EnterBlocking acquires a blocking transport and binds it to the client.
func (c *Client) EnterBlocking() (*Scope, error) {
	return c.enter(ModeBlocking)
}

// EnterNonblocking acquires a non-blocking transport and binds it to the
// client.
func (c *Client) EnterNonblocking() (*Scope, error) {
	return c.enter(ModeNonblocking)
}

func (c *Client) enter(mode Mode) (*Scope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scope != nil {
		return nil, errScopeActive("enter " + mode.String())
	}

	opts := transport.Options{TLS: c.config.TLS}
	var tr transport.Transport
	var err error
	if mode == ModeBlocking {
		tr, err = transport.NewBlocking(opts)
	} else {
		tr, err = transport.NewNonblocking(opts)
	}
	if err != nil {
		return nil, err
	}

	s := &Scope{client: c, mode: mode, tr: tr}
	c.scope = s
	c.log.Debug("scope entered", logger.Fields(logger.FieldScope, mode.String()))
	return s, nil
}

// Mode returns the scheduling model of this scope.
func (s *Scope) Mode() Mode { return s.mode }

// Active reports whether the scope has not been exited yet.
func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.exited
}

// Exit releases the scope's transport, cancelling every request still in
// flight on it. Responses that already completed stay valid and decodable.
// Exit is idempotent and safe to defer alongside error returns.
func (s *Scope) Exit() error {
	s.mu.Lock()
	if s.exited {
		s.mu.Unlock()
		return nil
	}
	s.exited = true
	s.mu.Unlock()

	err := s.tr.Close()

	s.client.mu.Lock()
	if s.client.scope == s {
		s.client.scope = nil
	}
	s.client.mu.Unlock()

	s.client.log.Debug("scope exited", logger.Fields(logger.FieldScope, s.mode.String()))
	return err
}
