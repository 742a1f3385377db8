package router

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kbukum/apiq/codec"
)

// segment is one element of a parsed path template.
type segment struct {
	literal string
	param   string // non-empty for {name} segments
}

func (s segment) isParam() bool { return s.param != "" }

// parseTemplate splits a path template into ordered segments.
func parseTemplate(template string) ([]segment, error) {
	if !strings.HasPrefix(template, "/") {
		return nil, fmt.Errorf("router: path template %q must start with '/'", template)
	}
	parts := strings.Split(strings.Trim(template, "/"), "/")
	if len(parts) == 1 && parts[0] == "" {
		return []segment{}, nil
	}

	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			name := p[1 : len(p)-1]
			if name == "" {
				return nil, fmt.Errorf("router: empty parameter name in template %q", template)
			}
			segs = append(segs, segment{param: name})
			continue
		}
		if strings.ContainsAny(p, "{}") {
			return nil, fmt.Errorf("router: malformed segment %q in template %q", p, template)
		}
		segs = append(segs, segment{literal: p})
	}
	return segs, nil
}

// canonical renders segments with parameter names erased, so that
// /todos/{id} and /todos/{todoID} collide as the same resolved template.
func canonical(method string, segs []segment) string {
	var b strings.Builder
	b.WriteString(method)
	for _, s := range segs {
		b.WriteByte('/')
		if s.isParam() {
			b.WriteString("{}")
		} else {
			b.WriteString(s.literal)
		}
	}
	return b.String()
}

// Route binds one (method, path template) pair to an attached type and its
// resolved codec. Routes are immutable once registered.
type Route struct {
	method   string
	template string
	segments []segment
	typ      reflect.Type
	codec    codec.Codec
}

// Method returns the HTTP method.
func (r *Route) Method() string { return r.method }

// Template returns the registered path template.
func (r *Route) Template() string { return r.template }

// Type returns the attached type decoded from this route's responses.
func (r *Route) Type() reflect.Type { return r.typ }

// Codec returns the encode/decode strategy bound at declaration time.
func (r *Route) Codec() codec.Codec { return r.codec }

func (r *Route) String() string {
	return fmt.Sprintf("%s %s -> %s", r.method, r.template, r.typ)
}

// PathParams holds the parameter values extracted by Resolve.
type PathParams map[string]string

// clone copies a route for inclusion under a new template.
func (r *Route) clone(template string, segs []segment) *Route {
	segsCopy := make([]segment, len(segs))
	copy(segsCopy, segs)
	return &Route{
		method:   r.method,
		template: template,
		segments: segsCopy,
		typ:      r.typ,
		codec:    r.codec,
	}
}
