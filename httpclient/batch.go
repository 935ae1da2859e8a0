package httpclient

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Call is one command for ExecuteAll
type Call struct {
	Method  string
	URL     string
	Params  any
	Options []Option
}

// ExecuteAll runs independent commands concurrently, for example deleting every session
// left behind by a test run. Responses are returned in call order. The first fatal error
// cancels the commands still in flight and is returned.
func ExecuteAll(ctx context.Context, c Client, calls ...Call) ([]*Response, error) {
	return ExecuteAllLimit(ctx, c, 0, calls...)
}

// ExecuteAllLimit is ExecuteAll with at most limit commands in flight. A non-positive
// limit means no bound.
func ExecuteAllLimit(ctx context.Context, c Client, limit int, calls ...Call) ([]*Response, error) {
	responses := make([]*Response, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, call := range calls {
		g.Go(func() error {
			resp, err := c.Execute(gctx, call.Method, call.URL, call.Params, call.Options...)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return responses, err
	}
	return responses, nil
}
