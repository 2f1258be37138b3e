package batch

import (
	"context"

	"github.com/orrery/resilient/engine"
)

// RunAllOrThrow runs RunAll and collapses it to a slice of values plus the
// first error encountered, in task order.
func RunAllOrThrow[T any](ctx context.Context, eng *engine.Engine, tasks []engine.Task[T], cfg Config, opts ...engine.Option) ([]T, error) {
	results := RunAll(ctx, eng, tasks, cfg, opts...)
	values := make([]T, len(results))
	var firstErr error
	for i, r := range results {
		values[i] = r.Data
		if firstErr == nil && !r.Ok() {
			firstErr = r.Err
		}
	}
	return values, firstErr
}

// PartitionAll runs RunAll and splits the results into successes and
// failures, each still carrying its original task index.
func PartitionAll[T any](ctx context.Context, eng *engine.Engine, tasks []engine.Task[T], cfg Config, opts ...engine.Option) (successes []IndexedResult[T], failures []IndexedResult[T]) {
	results := RunAll(ctx, eng, tasks, cfg, opts...)
	for i, r := range results {
		ir := IndexedResult[T]{Index: i, Result: r}
		if r.Ok() {
			successes = append(successes, ir)
		} else {
			failures = append(failures, ir)
		}
	}
	return successes, failures
}

// IndexedResult pairs a Result with the index of the task that produced it.
type IndexedResult[T any] struct {
	Index  int
	Result engine.Result[T]
}
