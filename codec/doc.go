// Package codec resolves encode/decode strategies for types attached to
// client routes.
//
// A type is bound to a codec exactly once, when its route is declared. The
// registry probes the type's capabilities against a fixed priority order:
//
//  1. self-coding types that carry their own hooks (Marshaler/Unmarshaler,
//     or json.Marshaler plus json.Unmarshaler)
//  2. schema-model shapes: structs with at least one exported field
//  3. a permissive dynamic fallback for maps, slices, and interface values
//
// A type matching no strategy fails at declaration time with
// *UnavailableError; codec resolution is never deferred to request time.
//
//	reg := codec.NewRegistry()
//	c, err := reg.Register(reflect.TypeOf(Todo{}))
package codec
