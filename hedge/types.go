package hedge

import "time"

// HedgeState describes the current state of a retry group for hedging decisions.
type HedgeState struct {
	// CallStart is when the current retry group started. The engine sets it
	// to the same instant as AttemptStart; it does not span earlier retries.
	CallStart time.Time
	// AttemptStart is when the current retry group (attempt 0 of this group) started.
	AttemptStart time.Time
	// RetryAttempt is the owning call's retry-loop attempt index (1 for the
	// first attempt). A trigger that wants to hedge only on a call's first
	// attempt, not on attempts already known to be retrying a prior
	// failure, can gate on this.
	RetryAttempt int
	// AttemptsLaunched is the number of attempts already launched in this group.
	AttemptsLaunched int
	// MaxHedges is the maximum number of additional managed attempts (hedges) allowed.
	// Note: Total attempts in group = 1 (primary) + MaxHedges.
	MaxHedges int
	// Elapsed is the time elapsed since AttemptStart.
	Elapsed time.Duration
	// Snapshot contains the current latency statistics for the operation.
	Snapshot LatencySnapshot
	// HedgeDelay, when non-zero, overrides FixedDelayTrigger's configured
	// Delay for this decision. The engine does not set it; it is zero in
	// every HedgeState the engine builds.
	HedgeDelay time.Duration
}

// Trigger decides when to spawn a hedged attempt.
type Trigger interface {
	// ShouldSpawnHedge returns true if a new hedge should be spawned.
	// nextCheckIn is a hint for when to check again. The engine does not
	// use it: it re-evaluates the trigger on a fixed 5ms tick.
	ShouldSpawnHedge(state HedgeState) (should bool, nextCheckIn time.Duration)
}
