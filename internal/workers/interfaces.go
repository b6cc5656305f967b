// Package workers runs the long-lived background components of the client
// (health monitor, sync job, operator API) under one lifecycle.
package workers

import "context"

// Worker is a background component. Run blocks until ctx is cancelled or the
// worker fails; a nil return after cancellation is a clean stop.
//
// Example implementation:
//
//	type ticker struct{}
//
//	func (t *ticker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// Func adapts a plain function to [Worker].
type Func func(ctx context.Context) error

func (f Func) Run(ctx context.Context) error {
	return f(ctx)
}
