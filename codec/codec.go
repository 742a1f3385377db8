package codec

import (
	"encoding/json"
	"reflect"
)

// Codec encodes and decodes values of a route's attached type.
type Codec interface {
	// Name identifies the strategy that produced this codec.
	Name() string
	// Marshal encodes a value into wire bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes wire bytes into the pointed-to value.
	Unmarshal(data []byte, v any) error
}

// Marshaler is the explicit encode hook for self-coding types.
type Marshaler interface {
	MarshalBody() ([]byte, error)
}

// Unmarshaler is the explicit decode hook for self-coding types.
// It must be implemented on a pointer receiver.
type Unmarshaler interface {
	UnmarshalBody(data []byte) error
}

// selfCodec dispatches to the hooks carried by the type itself.
type selfCodec struct{}

func (selfCodec) Name() string { return "self" }

func (selfCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(Marshaler); ok {
		return m.MarshalBody()
	}
	return json.Marshal(v)
}

func (selfCodec) Unmarshal(data []byte, v any) error {
	if u, ok := v.(Unmarshaler); ok {
		return u.UnmarshalBody(data)
	}
	return json.Unmarshal(data, v)
}

// structCodec handles schema-model shapes (structs with exported fields)
// through standard JSON field mapping.
type structCodec struct{}

func (structCodec) Name() string { return "struct" }

func (structCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (structCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// dynamicCodec is the permissive fallback for maps, slices, and interface
// values. Anything the JSON decoder accepts passes.
type dynamicCodec struct{}

func (dynamicCodec) Name() string { return "dynamic" }

func (dynamicCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (dynamicCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

var (
	marshalerType       = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType     = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	jsonMarshalerType   = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// strategy pairs a capability probe with the codec it yields.
type strategy struct {
	name  string
	match func(t reflect.Type) bool
	codec Codec
}

// strategies are probed in priority order; the first match wins.
var strategies = []strategy{
	{name: "self", match: matchSelf, codec: selfCodec{}},
	{name: "struct", match: matchStruct, codec: structCodec{}},
	{name: "dynamic", match: matchDynamic, codec: dynamicCodec{}},
}

// implementsEither reports whether t or *t implements iface.
func implementsEither(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	if t.Kind() != reflect.Pointer {
		return reflect.PointerTo(t).Implements(iface)
	}
	return false
}

func matchSelf(t reflect.Type) bool {
	if implementsEither(t, marshalerType) || implementsEither(t, unmarshalerType) {
		return true
	}
	return implementsEither(t, jsonMarshalerType) && implementsEither(t, jsonUnmarshalerType)
}

func matchStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func matchDynamic(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Interface:
		return true
	default:
		return false
	}
}

// Decode unmarshals data into a fresh instance of t using c and returns it.
// The returned value has exactly type t. Failures are reported as
// *DecodeError.
func Decode(c Codec, t reflect.Type, data []byte) (any, error) {
	if t == nil {
		// Route without an attached type: decode permissively.
		var v any
		if err := (dynamicCodec{}).Unmarshal(data, &v); err != nil {
			return nil, &DecodeError{Codec: "dynamic", Err: err}
		}
		return v, nil
	}

	var target reflect.Value
	switch t.Kind() {
	case reflect.Pointer:
		target = reflect.New(t.Elem())
		if err := c.Unmarshal(data, target.Interface()); err != nil {
			return nil, &DecodeError{Type: t, Codec: c.Name(), Err: err}
		}
		return target.Interface(), nil
	default:
		target = reflect.New(t)
		if err := c.Unmarshal(data, target.Interface()); err != nil {
			return nil, &DecodeError{Type: t, Codec: c.Name(), Err: err}
		}
		return target.Elem().Interface(), nil
	}
}
