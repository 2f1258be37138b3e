// Package resilient is the public facade over engine and batch: a lazy
// default Engine plus package-level shortcuts, mirroring recourse.go's
// Do/DoValue wrappers around a global *retry.Executor.
package resilient

import (
	"context"
	"log"
	"sync"

	"github.com/orrery/resilient/batch"
	"github.com/orrery/resilient/engine"
)

// Re-exported so callers importing only this package have everything they
// need without reaching into engine directly.
type (
	Task[T any]   = engine.Task[T]
	Result[T any] = engine.Result[T]
	ResultType    = engine.ResultType
	Option        = engine.Option
	RetryConfig   = engine.RetryConfig
	HedgeConfig   = engine.HedgeConfig
	BatchConfig   = batch.Config
)

const (
	Success = engine.Success
	Failure = engine.Failure
	Timeout = engine.Timeout
	Aborted = engine.Aborted
)

var (
	WithTimeout       = engine.WithTimeout
	WithIgnoreAbort   = engine.WithIgnoreAbort
	WithRetry         = engine.WithRetry
	WithCircuitBreaker = engine.WithCircuitBreaker
	WithBudget        = engine.WithBudget
	WithHedge         = engine.WithHedge
	WithRules         = engine.WithRules
	WithMapError      = engine.WithMapError
	WithHooks         = engine.WithHooks
	WithLogger        = engine.WithLogger
)

// New builds a standalone Engine. Most callers should use the package-level
// shortcuts below instead, which share one lazily-built default Engine.
func New(opts ...Option) (*engine.Engine, error) {
	return engine.New(opts...)
}

var (
	defaultEngine *engine.Engine
	defaultOnce   sync.Once
)

// Default returns the shared, lazily-initialized default Engine. Init may
// be called before any call to Default/Run/RunOrThrow to override it.
func Default() *engine.Engine {
	defaultOnce.Do(func() {
		if defaultEngine == nil {
			eng, err := engine.New()
			if err != nil {
				// defaultSettings() is always valid; a failure here means
				// the package itself is broken.
				panic("resilient: failed to build default engine: " + err.Error())
			}
			defaultEngine = eng
		}
	})
	return defaultEngine
}

// Init overrides the shared default Engine. It must be called before the
// first Default/Run/RunOrThrow call; afterward it logs and does nothing.
func Init(eng *engine.Engine) {
	if eng == nil {
		return
	}
	if defaultEngine != nil {
		log.Printf("resilient: Init called after default engine already initialized; ignoring")
		return
	}
	defaultOnce.Do(func() {
		defaultEngine = eng
	})
}

// Run executes task against the default Engine.
func Run[T any](ctx context.Context, task Task[T], opts ...Option) Result[T] {
	return engine.Run(ctx, Default(), task, opts...)
}

// RunOrThrow executes task against the default Engine and collapses the
// Result into a (value, error) pair.
func RunOrThrow[T any](ctx context.Context, task Task[T], opts ...Option) (T, error) {
	return engine.RunOrThrow(ctx, Default(), task, opts...)
}

// RunAll fans tasks out across the default Engine, bounded by cfg.
func RunAll[T any](ctx context.Context, tasks []Task[T], cfg BatchConfig, opts ...Option) []Result[T] {
	return batch.RunAll(ctx, Default(), tasks, cfg, opts...)
}

// RunAllOrThrow is RunAll collapsed to values plus the first error.
func RunAllOrThrow[T any](ctx context.Context, tasks []Task[T], cfg BatchConfig, opts ...Option) ([]T, error) {
	return batch.RunAllOrThrow(ctx, Default(), tasks, cfg, opts...)
}

// PartitionAll is RunAll split into successes and failures.
func PartitionAll[T any](ctx context.Context, tasks []Task[T], cfg BatchConfig, opts ...Option) ([]batch.IndexedResult[T], []batch.IndexedResult[T]) {
	return batch.PartitionAll(ctx, Default(), tasks, cfg, opts...)
}
