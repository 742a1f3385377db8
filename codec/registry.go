package codec

import (
	"reflect"
	"sync"
)

// Registry maps attached types to their resolved codecs.
// Resolution happens once per type, at registration; lookups afterwards are
// read-only.
type Registry struct {
	mu     sync.RWMutex
	codecs map[reflect.Type]Codec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[reflect.Type]Codec)}
}

// Register resolves a codec for t, binding the first strategy whose probe
// matches. Registering the same type again returns the codec already bound.
// Returns *UnavailableError if no strategy matches.
func (r *Registry) Register(t reflect.Type) (Codec, error) {
	if t == nil {
		return nil, &UnavailableError{}
	}

	r.mu.RLock()
	c, ok := r.codecs[t]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	for _, s := range strategies {
		if s.match(t) {
			r.mu.Lock()
			// Another registration may have won the race; keep the first binding.
			if existing, ok := r.codecs[t]; ok {
				r.mu.Unlock()
				return existing, nil
			}
			r.codecs[t] = s.codec
			r.mu.Unlock()
			return s.codec, nil
		}
	}

	return nil, &UnavailableError{Type: t}
}

// Override binds c to t unconditionally, replacing any probed strategy.
// Overrides installed before route declaration win over capability probing.
func (r *Registry) Override(t reflect.Type, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[t] = c
}

// Lookup returns the codec bound to t, if any.
func (r *Registry) Lookup(t reflect.Type) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[t]
	return c, ok
}
