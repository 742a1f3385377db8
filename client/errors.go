package client

import (
	"errors"
	"fmt"
)

// ScopeError reports an operation attempted with no active scope, or an
// attempt to bind a second transport while one is already bound.
type ScopeError struct {
	// Op is the operation that failed.
	Op string
	// Reason describes why.
	Reason string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("client: %s: %s", e.Op, e.Reason)
}

// IsScope checks if an error is a scope violation.
func IsScope(err error) bool {
	var e *ScopeError
	return errors.As(err, &e)
}

func errNoScope(op string) *ScopeError {
	return &ScopeError{Op: op, Reason: "no active scope; call EnterBlocking or EnterNonblocking first"}
}

func errScopeActive(op string) *ScopeError {
	return &ScopeError{Op: op, Reason: "a scope is already active on this client; scopes are not nestable"}
}
