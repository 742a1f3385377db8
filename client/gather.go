package client

import "context"

// GatherResult holds the outcome of one gathered request. Exactly one of
// Response and Err is set.
type GatherResult struct {
	Response *Response
	Err      error
}

// Gather awaits every request and returns their outcomes in the order the
// requests were issued. A failure in one slot never disturbs the others:
// each slot carries its own response or error.
func Gather(ctx context.Context, reqs ...*Request) []GatherResult {
	results := make([]GatherResult, len(reqs))
	for i, req := range reqs {
		resp, err := req.Response(ctx)
		results[i] = GatherResult{Response: resp, Err: err}
	}
	return results
}
