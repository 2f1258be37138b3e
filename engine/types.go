// Package engine implements the single-task resilient executor: config
// normalization, breaker and budget admission, the attempt/retry/hedge
// loop, and outcome packaging into a Result.
package engine

import (
	"context"

	"github.com/orrery/resilient/errs"
	"github.com/orrery/resilient/observe"
)

// Task is the caller's unit of work.
type Task[T any] func(ctx context.Context) (T, error)

// ResultType discriminates the outcome of one Run.
type ResultType int

const (
	Success ResultType = iota
	Failure
	Timeout
	Aborted
)

func (t ResultType) String() string {
	switch t {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Timeout:
		return "timeout"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result is the discriminated outcome of one Run. Exactly one of Data/Err
// is meaningful, per Type.
type Result[T any] struct {
	Type    ResultType
	Data    T
	Err     *errs.TypedError
	Metrics observe.Metrics
}

// Ok reports whether the call succeeded.
func (r Result[T]) Ok() bool { return r.Type == Success }
