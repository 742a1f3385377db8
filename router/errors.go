package router

import (
	"errors"
	"fmt"
)

// CollisionError reports a duplicate (method, resolved template) pair within
// a router's namespace. It is raised at declaration or inclusion time.
type CollisionError struct {
	// Method is the HTTP method of the colliding declaration.
	Method string
	// Template is the template being declared.
	Template string
	// Existing is the template already occupying the slot.
	Existing string
}

func (e *CollisionError) Error() string {
	if e.Template != e.Existing {
		return fmt.Sprintf("router: route %s %s collides with existing %s %s", e.Method, e.Template, e.Method, e.Existing)
	}
	return fmt.Sprintf("router: route %s %s already registered", e.Method, e.Template)
}

// NotFoundError reports that no registered template matched a call's path.
type NotFoundError struct {
	// Method is the HTTP method of the call.
	Method string
	// Path is the concrete path that failed to match.
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("router: no route matches %s %s", e.Method, e.Path)
}

// IsCollision checks if an error is a route collision.
func IsCollision(err error) bool {
	var e *CollisionError
	return errors.As(err, &e)
}

// IsNotFound checks if an error is a route miss.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
