// Package client is the top-level apiq façade: declare routes with attached
// payload types, enter a blocking or non-blocking scope, issue requests, and
// decode responses lazily into the attached types.
//
//	c, err := client.New(client.Config{BaseURL: "https://jsonplaceholder.typicode.com"})
//	_ = router.Get[Todo](c.Router(), "/todos/{id}")
//
//	scope, err := c.EnterBlocking()
//	defer scope.Exit()
//
//	req, err := c.Get("/todos/1")
//	resp, err := req.Response(ctx)
//	todo, err := client.As[Todo](resp)
//
// A client holds at most one transport binding at a time. EnterBlocking
// binds a transport that executes each call sequentially on the calling
// goroutine; EnterNonblocking binds one that puts every request in flight
// the moment it is created, with Request.Response as the single suspension
// point:
//
//	scope, err := c.EnterNonblocking()
//	defer scope.Exit()
//
//	reqs := make([]*client.Request, 0, 3)
//	for _, id := range []string{"1", "2", "3"} {
//	    req, _ := c.Get("/todos/" + id)
//	    reqs = append(reqs, req)
//	}
//	results := client.Gather(ctx, reqs...) // ordered by issue order
//
// Exiting a scope always releases the transport and cancels anything still
// in flight; responses that already completed stay decodable.
package client
