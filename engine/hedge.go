package engine

import (
	"context"
	"time"

	"github.com/orrery/resilient/budget"
	"github.com/orrery/resilient/hedge"
	"github.com/orrery/resilient/observe"
)

// runGroup runs the primary attempt and, when cfg is enabled and not
// suppressed, races it against up to cfg.MaxHedges speculative duplicates
// launched per cfg.Trigger. The first success wins; a failure ends the race
// only when cfg.CancelOnFirstTerminal is set or no other attempt is still in
// flight. The rest are abandoned (their contexts are cancelled, their
// goroutines may still finish but their results are discarded). retryAttempt is the owning
// Run call's retry-loop attempt index, threaded through into each
// observe.AttemptInfo. The primary attempt is already budget-admitted by
// the caller (budget.KindRetry); bud only gates the additional hedge
// launches this function spawns on its own (budget.KindHedge).
func runGroup[T any](ctx context.Context, timeout time.Duration, task Task[T], cfg HedgeConfig, tracker hedge.LatencyTracker, suppressed bool, retryAttempt int, bud budget.Budget) (attemptResult[T], int) {
	if !cfg.Enabled || suppressed || cfg.MaxHedges <= 0 {
		start := time.Now()
		r := runOnce(ctx, timeout, task, observe.AttemptInfo{RetryIndex: retryAttempt, Attempt: retryAttempt})
		if tracker != nil {
			tracker.Observe(time.Since(start))
		}
		return r, 1
	}

	trigger := cfg.Trigger
	if trigger == nil {
		trigger = hedge.FixedDelayTrigger{Delay: 50 * time.Millisecond}
	}

	groupCtx, cancelGroup := context.WithCancel(ctx)
	defer cancelGroup()

	results := make(chan attemptResult[T], cfg.MaxHedges+1)
	launched := 0
	pending := 0
	callStart := time.Now()

	launch := func() {
		hedgeIdx := launched // 0 is the primary; 1, 2, ... are hedges
		launched++
		pending++
		go func() {
			info := observe.AttemptInfo{RetryIndex: retryAttempt, Attempt: retryAttempt, IsHedge: hedgeIdx > 0, HedgeIndex: hedgeIdx}
			start := time.Now()
			r := runOnce(groupCtx, timeout, task, info)
			if tracker != nil {
				tracker.Observe(time.Since(start))
			}
			select {
			case results <- r:
			case <-groupCtx.Done():
			}
		}()
	}

	launch() // primary

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	var lastFailure attemptResult[T]
	for {
		select {
		case r := <-results:
			pending--
			if r.err == nil {
				return r, launched
			}
			lastFailure = r
			if cfg.CancelOnFirstTerminal || pending == 0 {
				// Either a single failure ends the race, or nothing is
				// left in flight to hedge against.
				return lastFailure, launched
			}
		case <-ticker.C:
			if launched >= 1+cfg.MaxHedges {
				continue
			}
			snap := hedge.LatencySnapshot{}
			if tracker != nil {
				snap = tracker.Snapshot()
			}
			state := hedge.HedgeState{
				CallStart:        callStart,
				AttemptStart:     callStart,
				RetryAttempt:     retryAttempt,
				AttemptsLaunched: launched,
				MaxHedges:        cfg.MaxHedges,
				Elapsed:          time.Since(callStart),
				Snapshot:         snap,
			}
			if should, _ := trigger.ShouldSpawnHedge(state); should {
				if bud != nil && !bud.AllowAttempt(ctx, launched, budget.KindHedge, 1).Allowed {
					// Budget denied this hedge launch; stay in the race and
					// let the next tick re-evaluate instead of spawning.
					continue
				}
				launch()
			}
		case <-ctx.Done():
			var zero T
			return attemptResult[T]{data: zero, err: ctx.Err()}, launched
		}
	}
}
