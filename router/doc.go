// Package router maps HTTP method/path-template pairs to the payload types
// attached to them.
//
// Routes are declared with the generic per-method helpers, one expression
// per endpoint:
//
//	r := router.New(router.WithPrefix("/todos"))
//	err := router.Get[Todo](r, "/{id}")
//
// Declaration is fail-fast: a duplicate (method, template) pair returns
// *CollisionError and an attached type no codec strategy supports returns
// codec.UnavailableError, both before any request can be issued.
//
// Routers compose: Include copies every route of a sub-router into the
// parent under a prefix. The copy is by value, so mutating the sub-router
// afterwards never changes what the parent already holds, and the same
// sub-router may be included under several prefixes independently.
package router
