// Package batch runs many independent tasks through a shared Engine with a
// bounded worker concurrency, the way retry/group.go fans a single call's
// hedges out across goroutines but at the scale of a whole slice of tasks.
package batch

import (
	"context"
	"sync"

	"github.com/orrery/resilient/engine"
	"golang.org/x/sync/semaphore"
)

// Config bounds how batch.Run fans work out across the tasks slice.
type Config struct {
	// Concurrency caps the number of tasks in flight at once. <=0 means
	// unbounded (len(tasks) workers).
	Concurrency int

	// StopOnFirstError cancels remaining in-flight and not-yet-started
	// tasks as soon as one task produces a non-success Result.
	StopOnFirstError bool
}

// RunAll runs tasks[i] through eng for every i, honoring cfg.Concurrency,
// and returns index-aligned results: results[i] always corresponds to
// tasks[i], even when StopOnFirstError aborts some of them early.
func RunAll[T any](ctx context.Context, eng *engine.Engine, tasks []engine.Task[T], cfg Config, opts ...engine.Option) []engine.Result[T] {
	n := len(tasks)
	results := make([]engine.Result[T], n)
	if n == 0 {
		return results
	}

	weight := cfg.Concurrency
	if weight <= 0 {
		weight = n
	}
	sem := semaphore.NewWeighted(int64(weight))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var once sync.Once
	stopAll := func() {
		if cfg.StopOnFirstError {
			once.Do(cancel)
		}
	}

	var wg sync.WaitGroup
	for i := range tasks {
		if err := sem.Acquire(runCtx, 1); err != nil {
			// Context already cancelled (outer ctx, or a prior task
			// tripped StopOnFirstError): short-circuit straight to an
			// aborted result through the real engine, which recognizes
			// the already-done context and never invokes the task.
			var zero T
			results[i] = engine.Run(runCtx, eng, func(context.Context) (T, error) { return zero, err }, opts...)
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			r := engine.Run(runCtx, eng, tasks[i], opts...)
			results[i] = r
			if !r.Ok() {
				stopAll()
			}
		}(i)
	}

	wg.Wait()
	return results
}
