// Package observe defines the executor's observability surface: structured
// logging, lifecycle hooks, and a per-call Timeline. The Prometheus and
// OpenTelemetry adapters (in the promobserve and otelobserve subpackages)
// translate the hooks into metrics and spans.
package observe

import (
	"time"

	"github.com/orrery/resilient/circuit"
	"github.com/orrery/resilient/errs"
)

// AttemptRecord describes a single attempt (or hedge attempt).
type AttemptRecord struct {
	Attempt    int
	StartTime  time.Time
	EndTime    time.Time
	IsHedge    bool
	HedgeIndex int
	Err        *errs.TypedError
	Backoff    time.Duration
}

// Timeline is the structured record of one call and all of its attempts.
type Timeline struct {
	Name       string
	Start      time.Time
	End        time.Time
	Attributes map[string]string
	Attempts   []AttemptRecord
	FinalErr   *errs.TypedError
}

// Hooks are optional lifecycle callbacks. Every field may be nil; the
// engine invokes whichever are set through SafeCall, so a panicking hook
// never affects the call's outcome.
type Hooks struct {
	OnSuccess func(data any, metrics Metrics)
	OnError   func(err *errs.TypedError, metrics Metrics)
	OnRetry   func(attempt int, err *errs.TypedError, delay time.Duration)
	OnFinally func(metrics Metrics)
	OnAbort   func(err *errs.TypedError)

	OnCircuitStateChange func(from, to circuit.State)
}

// Metrics is the per-call summary returned alongside every Result.
type Metrics struct {
	TotalAttempts int
	TotalRetries  int
	TotalDuration time.Duration
	LastError     *errs.TypedError
	RetryHistory  []RetryHistoryEntry
}

// RetryHistoryEntry records one retry decision.
type RetryHistoryEntry struct {
	Attempt   int
	Error     *errs.TypedError
	Delay     time.Duration
	Timestamp time.Time
}

// Logger is the structured logging surface the engine writes through.
// *slog.Logger satisfies this interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
