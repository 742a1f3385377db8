// Package transport executes fully built HTTP requests for the client.
//
// Two implementations share the same wire mechanics over net/http:
//
//   - Blocking runs one round trip per call on the calling goroutine and
//     returns the complete result.
//   - Nonblocking launches the round trip immediately on Submit and hands
//     back a Pending handle; Pending.Wait is the single suspension point.
//     Closing the transport cancels everything still in flight, while
//     results that already completed stay readable.
//
// The transport never interprets response status codes; it reports only
// connection-level failures (connect, read, timeout, cancellation) through
// typed *Error values.
package transport
