package engine

import (
	"context"
	"errors"
	"time"

	"github.com/orrery/resilient/cancelctx"
	"github.com/orrery/resilient/errs"
	"github.com/orrery/resilient/observe"
)

type attemptResult[T any] struct {
	data T
	err  error
}

// runOnce invokes task once, under a context that is Done when either ctx
// is Done or an independently rooted per-attempt timeout elapses. A nil
// timeout (<=0) skips the timeout source entirely. info is attached to the
// attempt context so a task can introspect its own attempt/hedge position
// via observe.AttemptFromContext.
func runOnce[T any](ctx context.Context, timeout time.Duration, task Task[T], info observe.AttemptInfo) attemptResult[T] {
	var extra []context.Context
	var cancelTimeout context.CancelFunc
	var timeoutCtx context.Context
	if timeout > 0 {
		timeoutCtx, cancelTimeout = context.WithTimeout(context.Background(), timeout)
		extra = append(extra, timeoutCtx)
		defer cancelTimeout()
	}

	attemptCtx, cleanup := cancelctx.Merge(ctx, extra...)
	defer cleanup()
	attemptCtx = observe.WithAttemptInfo(attemptCtx, info)

	done := make(chan attemptResult[T], 1)
	go func() {
		var data T
		var err error
		defer func() { done <- attemptResult[T]{data: data, err: err} }()
		defer recoverToError(&err)
		data, err = task(attemptCtx)
	}()

	var result attemptResult[T]
	select {
	case result = <-done:
	case <-attemptCtx.Done():
		var zero T
		result = attemptResult[T]{data: zero, err: attemptCtx.Err()}
	}

	// attemptCtx is built on context.WithCancel, which always reports
	// Canceled regardless of which source tripped it, so a cooperating
	// task that just forwards ctx.Err() can't tell outer cancellation
	// from the per-attempt timeout either. Reclassify using the two
	// sources we actually have access to here.
	if result.err != nil && attemptCtx.Err() != nil && errors.Is(result.err, context.Canceled) {
		switch {
		case ctx.Err() != nil:
			result.err = context.Canceled
		case timeoutCtx != nil && timeoutCtx.Err() != nil:
			result.err = errs.ErrAttemptTimeout
		}
	}
	return result
}
