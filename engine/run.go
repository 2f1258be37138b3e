package engine

import (
	"context"
	"time"

	"github.com/orrery/resilient/backoff"
	"github.com/orrery/resilient/budget"
	"github.com/orrery/resilient/circuit"
	"github.com/orrery/resilient/errs"
	"github.com/orrery/resilient/hedge"
	"github.com/orrery/resilient/observe"
)

// Run executes task under eng's settings, overlaid with opts. It never
// panics: task panics are recovered and surfaced as a Failure result.
func Run[T any](ctx context.Context, eng *Engine, task Task[T], opts ...Option) Result[T] {
	s := eng.base
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if err := s.Validate(); err != nil {
		te := eng.normalizer.Normalize(err)
		return Result[T]{Type: Failure, Err: te}
	}

	start := time.Now()
	metrics := observe.Metrics{}

	capture, capturing := observe.TimelineCaptureFromContext(ctx)
	var timeline *observe.Timeline
	if capturing {
		timeline = &observe.Timeline{Start: start}
	}

	finish := func(rt ResultType, data T, te *errs.TypedError) Result[T] {
		metrics.TotalDuration = time.Since(start)
		metrics.LastError = te
		observe.SafeCall(func() {
			if s.hooks.OnFinally != nil {
				s.hooks.OnFinally(metrics)
			}
		})
		// Re-read the breaker after this call's outcome was recorded, so a
		// transition it caused is reported before Run returns.
		if eng.breaker != nil {
			eng.reportBreakerState(eng.breaker.State(), s.hooks)
		}
		if capturing {
			timeline.End = time.Now()
			timeline.FinalErr = te
			observe.StoreTimelineCapture(capture, timeline)
		}
		return Result[T]{Type: rt, Data: data, Err: te, Metrics: metrics}
	}

	// Outer-context short-circuit: an already-cancelled caller context
	// never reaches the breaker or the task.
	if err := ctx.Err(); err != nil {
		te := eng.normalizer.Normalize(err)
		observe.SafeCall(func() {
			if s.hooks.OnAbort != nil {
				s.hooks.OnAbort(te)
			}
		})
		var zero T
		return finish(Aborted, zero, te)
	}

	suppressHedge := false
	if eng.breaker != nil {
		decision := eng.breaker.Allow(ctx)
		eng.reportBreakerState(decision.State, s.hooks)
		if !decision.Allowed {
			te := eng.normalizer.Normalize(errs.CircuitOpenError{})
			var zero T
			return finish(Failure, zero, te)
		}
		if decision.State == circuit.StateHalfOpen {
			suppressHedge = true
		}
	}

	var zero T
	attempt := 0

	for {
		attempt++

		bud := eng.bud
		if bud == nil {
			bud = budget.Unlimited{}
		}
		bd := bud.AllowAttempt(ctx, attempt, budget.KindRetry, 1)

		var te *errs.TypedError

		if !bd.Allowed {
			// A budget denial is an expected, transient admission-control
			// outcome, not a task invocation: it doesn't consume an attempt
			// slot or land in the timeline, but it still runs through the
			// same retry decision as any other failure below, since the
			// budget is expected to refill.
			te = eng.normalizer.Normalize(errs.BudgetExceededError{Reason: bd.Reason})
			if s.mapError != nil {
				if mapped := s.mapError(te); mapped != nil {
					te = mapped
				}
			}
		} else {
			attemptStart := time.Now()
			r, launched := runGroup(ctx, s.timeout, task, s.hedge, eng.hedgeTracker(), suppressHedge, attempt, bud)
			metrics.TotalAttempts += launched

			if r.err == nil {
				if capturing {
					timeline.Attempts = append(timeline.Attempts, observe.AttemptRecord{
						Attempt: attempt, StartTime: attemptStart, EndTime: time.Now(),
					})
				}
				eng.recordOutcome(true, nil)
				observe.SafeCall(func() {
					if s.hooks.OnSuccess != nil {
						s.hooks.OnSuccess(r.data, metrics)
					}
				})
				observe.SafeCall(func() {
					s.logger.Info("call succeeded", "attempt", attempt, "totalAttempts", metrics.TotalAttempts)
				})
				return finish(Success, r.data, nil)
			}

			te = eng.normalizer.Normalize(r.err)
			if s.mapError != nil {
				if mapped := s.mapError(te); mapped != nil {
					te = mapped
				}
			}
			if capturing {
				timeline.Attempts = append(timeline.Attempts, observe.AttemptRecord{
					Attempt: attempt, StartTime: attemptStart, EndTime: time.Now(), Err: te,
				})
			}
		}

		if te.Code == errs.CodeAborted {
			eng.recordOutcome(false, te)
			observe.SafeCall(func() {
				if s.hooks.OnAbort != nil {
					s.hooks.OnAbort(te)
				}
			})
			// IgnoreAbort (default true) only decides whether OnError also
			// fires alongside OnAbort; Type is Aborted either way.
			if !s.ignoreAbort {
				observe.SafeCall(func() {
					if s.hooks.OnError != nil {
						s.hooks.OnError(te, metrics)
					}
				})
				observe.SafeCall(func() {
					s.logger.Error("call aborted", "attempt", attempt, "code", te.Code, "err", te.Error())
				})
			}
			return finish(Aborted, zero, te)
		}

		retryable := te.Retryable
		if s.retry.ShouldRetry != nil {
			retryable = s.retry.ShouldRetry(attempt, te)
		}
		if !retryable || attempt > s.retry.MaxRetries {
			eng.recordOutcome(false, te)
			observe.SafeCall(func() {
				if s.hooks.OnError != nil {
					s.hooks.OnError(te, metrics)
				}
			})
			observe.SafeCall(func() {
				s.logger.Error("call failed", "attempt", attempt, "code", te.Code, "err", te.Error())
			})
			rt := Failure
			if te.Code == errs.CodeTimeout {
				rt = Timeout
			}
			return finish(rt, zero, te)
		}

		delay := backoff.ComputeDelay(s.retry.Strategy, attempt, te)
		delay = backoff.ApplyJitter(delay, s.retry.Jitter)

		metrics.TotalRetries++
		metrics.RetryHistory = append(metrics.RetryHistory, observe.RetryHistoryEntry{
			Attempt: attempt, Error: te, Delay: delay, Timestamp: time.Now(),
		})
		observe.SafeCall(func() {
			if s.hooks.OnRetry != nil {
				s.hooks.OnRetry(attempt, te, delay)
			}
		})
		observe.SafeCall(func() {
			s.logger.Info("retrying call", "attempt", attempt, "code", te.Code, "delay", delay)
		})

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				te := eng.normalizer.Normalize(ctx.Err())
				eng.recordOutcome(false, te)
				return finish(Aborted, zero, te)
			}
		}
	}
}

// RunOrThrow runs task and collapses the Result into a (value, error) pair,
// for callers that would rather not discriminate on ResultType themselves.
func RunOrThrow[T any](ctx context.Context, eng *Engine, task Task[T], opts ...Option) (T, error) {
	r := Run(ctx, eng, task, opts...)
	if r.Ok() {
		return r.Data, nil
	}
	return r.Data, r.Err
}

func (eng *Engine) reportBreakerState(state circuit.State, h observe.Hooks) {
	eng.mu.Lock()
	prev := eng.lastBreakerState
	eng.lastBreakerState = state
	eng.mu.Unlock()
	if prev != state {
		observe.SafeCall(func() {
			if h.OnCircuitStateChange != nil {
				h.OnCircuitStateChange(prev, state)
			}
		})
	}
}

// recordOutcome updates the breaker with a call's outcome. te is nil on
// success. The breaker itself decides, via its configured
// ShouldCountAsFailure predicate, whether te.Code actually advances its
// failure count.
func (eng *Engine) recordOutcome(success bool, te *errs.TypedError) {
	if eng.breaker == nil {
		return
	}
	if success {
		eng.breaker.RecordSuccess(context.Background())
		return
	}
	eng.breaker.RecordFailure(context.Background(), te.Code)
}

func (eng *Engine) hedgeTracker() hedge.LatencyTracker {
	return eng.tracker
}
