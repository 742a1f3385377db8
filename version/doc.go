// Package version exposes the library version embedded at build time.
//
// The client uses it for the default User-Agent header. Override with:
//
//	go build -ldflags "-X github.com/kbukum/apiq/version.Version=1.2.0"
package version
