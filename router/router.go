package router

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/kbukum/apiq/codec"
)

// Router is a composable registry of routes. A router may be built standalone
// and later included into a client's root router under a prefix.
type Router struct {
	prefix string
	codecs *codec.Registry

	mu     sync.RWMutex
	routes []*Route          // declaration order, used for tie-breaking
	index  map[string]*Route // canonical (method, template) -> route
}

// Option configures a Router.
type Option func(*Router)

// WithPrefix prepends a fixed prefix to every template registered on this
// router. The prefix must start with '/' and must not end with '/'.
func WithPrefix(prefix string) Option {
	return func(r *Router) { r.prefix = prefix }
}

// WithRegistry shares an existing codec registry, typically the owning
// client's, so that codec overrides apply to routes declared here.
func WithRegistry(reg *codec.Registry) Option {
	return func(r *Router) { r.codecs = reg }
}

// New creates an empty router.
func New(opts ...Option) *Router {
	r := &Router{index: make(map[string]*Route)}
	for _, opt := range opts {
		opt(r)
	}
	if r.codecs == nil {
		r.codecs = codec.NewRegistry()
	}
	return r
}

// Registry returns the codec registry this router resolves against.
func (r *Router) Registry() *codec.Registry { return r.codecs }

// Routes returns a snapshot of all registered routes in declaration order.
func (r *Router) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Register attaches type T to a new route. The route is created, its codec
// resolved, and any collision reported immediately.
func Register[T any](r *Router, method, template string) error {
	var proto T
	typ := reflect.TypeOf(proto)
	if typ == nil {
		typ = reflect.TypeOf((*T)(nil)).Elem()
	}
	return r.register(method, template, typ)
}

// Get declares a GET route returning T.
func Get[T any](r *Router, template string) error {
	return Register[T](r, http.MethodGet, template)
}

// Post declares a POST route returning T.
func Post[T any](r *Router, template string) error {
	return Register[T](r, http.MethodPost, template)
}

// Put declares a PUT route returning T.
func Put[T any](r *Router, template string) error {
	return Register[T](r, http.MethodPut, template)
}

// Patch declares a PATCH route returning T.
func Patch[T any](r *Router, template string) error {
	return Register[T](r, http.MethodPatch, template)
}

// Delete declares a DELETE route returning T.
func Delete[T any](r *Router, template string) error {
	return Register[T](r, http.MethodDelete, template)
}

func (r *Router) register(method, template string, typ reflect.Type) error {
	method = strings.ToUpper(method)
	full := r.prefix + template

	segs, err := parseTemplate(full)
	if err != nil {
		return err
	}

	c, err := r.codecs.Register(typ)
	if err != nil {
		return err
	}

	route := &Route{
		method:   method,
		template: full,
		segments: segs,
		typ:      typ,
		codec:    c,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(route)
}

// add inserts a route, enforcing the unique (method, resolved template)
// invariant. Caller holds r.mu.
func (r *Router) add(route *Route) error {
	key := canonical(route.method, route.segments)
	if existing, ok := r.index[key]; ok {
		return &CollisionError{
			Method:   route.method,
			Template: route.template,
			Existing: existing.template,
		}
	}
	r.index[key] = route
	r.routes = append(r.routes, route)
	return nil
}

// Include copies every route of sub into r, rewriting templates by
// prepending prefix. sub is left unmodified; later mutation of sub does not
// affect routes already copied. Collisions fail the same way as Register,
// and a failed include leaves r unchanged.
func (r *Router) Include(sub *Router, prefix string) error {
	if prefix != "" {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("router: include prefix %q must start with '/'", prefix)
		}
		if strings.HasSuffix(prefix, "/") {
			return fmt.Errorf("router: include prefix %q must not end with '/'", prefix)
		}
	}

	sub.mu.RLock()
	incoming := make([]*Route, len(sub.routes))
	copy(incoming, sub.routes)
	sub.mu.RUnlock()

	// Build all copies up front so a collision midway leaves r untouched.
	copies := make([]*Route, 0, len(incoming))
	for _, src := range incoming {
		if prefix == "" && src.template == "" {
			return fmt.Errorf("router: prefix and route path cannot both be empty")
		}
		template := prefix + src.template
		segs, err := parseTemplate(template)
		if err != nil {
			return err
		}
		copies = append(copies, src.clone(template, segs))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, route := range copies {
		key := canonical(route.method, route.segments)
		if existing, ok := r.index[key]; ok {
			return &CollisionError{
				Method:   route.method,
				Template: route.template,
				Existing: existing.template,
			}
		}
	}
	for _, route := range copies {
		r.index[canonical(route.method, route.segments)] = route
		r.routes = append(r.routes, route)
	}
	return nil
}

// Resolve matches a concrete path against the registered templates for
// method. A literal segment outranks a parameter segment at the same
// position; among equally specific candidates the earliest-registered wins.
// No match returns *NotFoundError.
func (r *Router) Resolve(method, path string) (*Route, PathParams, error) {
	method = strings.ToUpper(method)
	parts := splitPath(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Route
	var bestParams PathParams
	for _, route := range r.routes {
		if route.method != method || len(route.segments) != len(parts) {
			continue
		}
		params, ok := match(route.segments, parts)
		if !ok {
			continue
		}
		if best == nil || moreSpecific(route.segments, best.segments) {
			best = route
			bestParams = params
		}
	}
	if best == nil {
		return nil, nil, &NotFoundError{Method: method, Path: path}
	}
	return best, bestParams, nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}

// match binds path parts to template segments.
func match(segs []segment, parts []string) (PathParams, bool) {
	params := make(PathParams)
	for i, s := range segs {
		if s.isParam() {
			params[s.param] = parts[i]
			continue
		}
		if s.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}

// moreSpecific reports whether a strictly outranks b: at the first position
// where they differ, a has a literal where b has a parameter.
func moreSpecific(a, b []segment) bool {
	for i := range a {
		al, bl := !a[i].isParam(), !b[i].isParam()
		if al != bl {
			return al
		}
	}
	return false
}
