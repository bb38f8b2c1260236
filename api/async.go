package api

import "context"

// Result is the outcome delivered by Go.
type Result struct {
	Response *Response
	Err      error
}

// Go runs fn in a new goroutine and returns a channel that receives exactly
// one Result and is then closed. The channel is buffered, so fn never blocks
// on an abandoned receiver.
//
//	done := api.Go(ctx, func(ctx context.Context) (*api.Response, error) {
//		return client.Labels().List(ctx, "example.com", "bob", false)
//	})
//	res := <-done
func Go(ctx context.Context, fn func(context.Context) (*Response, error)) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- Result{Err: err}
			return
		}
		resp, err := fn(ctx)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}
