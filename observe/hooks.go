package observe

import (
	"time"

	"github.com/orrery/resilient/circuit"
	"github.com/orrery/resilient/errs"
)

// Multi fans Hooks out to several sets at once, mirroring the teacher's
// MultiObserver but over the flatter Hooks shape. Nil entries are skipped.
func Multi(all ...Hooks) Hooks {
	return Hooks{
		OnSuccess: func(data any, m Metrics) {
			for _, h := range all {
				if h.OnSuccess != nil {
					SafeCall(func() { h.OnSuccess(data, m) })
				}
			}
		},
		OnError: func(err *errs.TypedError, m Metrics) {
			for _, h := range all {
				if h.OnError != nil {
					SafeCall(func() { h.OnError(err, m) })
				}
			}
		},
		OnRetry: func(attempt int, err *errs.TypedError, delay time.Duration) {
			for _, h := range all {
				if h.OnRetry != nil {
					SafeCall(func() { h.OnRetry(attempt, err, delay) })
				}
			}
		},
		OnFinally: func(m Metrics) {
			for _, h := range all {
				if h.OnFinally != nil {
					SafeCall(func() { h.OnFinally(m) })
				}
			}
		},
		OnAbort: func(err *errs.TypedError) {
			for _, h := range all {
				if h.OnAbort != nil {
					SafeCall(func() { h.OnAbort(err) })
				}
			}
		},
		OnCircuitStateChange: func(from, to circuit.State) {
			for _, h := range all {
				if h.OnCircuitStateChange != nil {
					SafeCall(func() { h.OnCircuitStateChange(from, to) })
				}
			}
		},
	}
}

// NoopLogger discards everything. It is the engine's default logger.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...any) {}
func (NoopLogger) Info(string, ...any)  {}
func (NoopLogger) Warn(string, ...any)  {}
func (NoopLogger) Error(string, ...any) {}
