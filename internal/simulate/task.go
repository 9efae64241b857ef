package simulate

import (
	"context"
	"time"
)

// Result is the outcome of a simulated external step.
type Result[T any] struct {
	Value T
	Err   error
}

// Task runs fn after the given delay and delivers its outcome on the
// returned channel. The delay stands in for an external system (payment
// gateway, account verification) that this storefront only simulates.
//
// Cancelling ctx abandons the task: fn is never invoked and the channel
// carries ctx.Err(). Callers that abandon the task therefore leave all
// engine state exactly as it was.
func Task[T any](ctx context.Context, delay time.Duration, fn func() (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)

	go func() {
		defer close(out)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			var zero T
			out <- Result[T]{Value: zero, Err: ctx.Err()}
			return
		case <-timer.C:
		}

		v, err := fn()
		out <- Result[T]{Value: v, Err: err}
	}()

	return out
}
