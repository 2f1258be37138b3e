package circuit

import (
	"context"
	"sync"
	"time"
)

// ConsecutiveFailureBreaker opens after a run of consecutive counted
// failures, stays open for a cooldown window, then admits a bounded number
// of half-open probes before either closing (on success) or reopening (on
// any probe failure).
type ConsecutiveFailureBreaker struct {
	mu sync.Mutex

	threshold      int
	cooldown       time.Duration
	maxProbes      int
	probesRequired int // consecutive probe successes needed to close

	// countsAsFailure filters which failure codes advance the breaker's
	// failure count. A code this returns false for is reported to
	// RecordFailure but otherwise ignored — the breaker's state is left
	// untouched. When nil, every code counts; New installs the package
	// default exclusion set when its Config leaves the predicate nil.
	countsAsFailure func(code string) bool

	state               State
	consecutiveFailures int
	openedAt            time.Time
	probesSent          int
	probesSucceeded     int

	nowFn func() time.Time
}

// NewConsecutiveFailureBreaker creates a new breaker with the given
// consecutive-failure threshold and open-state cooldown.
func NewConsecutiveFailureBreaker(threshold int, cooldown time.Duration) *ConsecutiveFailureBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}
	return &ConsecutiveFailureBreaker{
		state:          StateClosed,
		threshold:      threshold,
		cooldown:       cooldown,
		maxProbes:      1,
		probesRequired: 1,
	}
}

func (cb *ConsecutiveFailureBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.settleOpenWindowLocked()
}

func (cb *ConsecutiveFailureBreaker) Allow(ctx context.Context) Decision {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch state := cb.settleOpenWindowLocked(); state {
	case StateOpen:
		return Decision{Allowed: false, State: StateOpen, Reason: ReasonCircuitOpen}
	case StateHalfOpen:
		if cb.probesSent >= cb.maxProbes {
			return Decision{Allowed: false, State: StateHalfOpen, Reason: ReasonCircuitHalfOpenProbeLimit}
		}
		cb.probesSent++
		return Decision{Allowed: true, State: StateHalfOpen}
	default:
		return Decision{Allowed: true, State: StateClosed}
	}
}

func (cb *ConsecutiveFailureBreaker) RecordSuccess(ctx context.Context) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.settleOpenWindowLocked() {
	case StateClosed:
		cb.consecutiveFailures = 0
	case StateHalfOpen:
		cb.probesSucceeded++
		if cb.probesSucceeded >= cb.probesRequired {
			cb.setState(StateClosed)
		} else {
			cb.probesSent-- // free the slot until enough successes land
		}
	}
	// A success reported while Open can only mean Allow was bypassed; there
	// is no state transition that makes sense for it, so it's dropped.
}

func (cb *ConsecutiveFailureBreaker) RecordFailure(ctx context.Context, code string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.shouldCount(code) {
		return
	}

	switch cb.settleOpenWindowLocked() {
	case StateClosed:
		cb.consecutiveFailures++
		if cb.consecutiveFailures >= cb.threshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen) // a probe failure reopens immediately
	}
}

func (cb *ConsecutiveFailureBreaker) shouldCount(code string) bool {
	if cb.countsAsFailure != nil {
		return cb.countsAsFailure(code)
	}
	return true
}

// settleOpenWindowLocked advances Open to HalfOpen once the cooldown has
// elapsed. Must be called with cb.mu held.
func (cb *ConsecutiveFailureBreaker) settleOpenWindowLocked() State {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cooldown {
		cb.setState(StateHalfOpen)
	}
	return cb.state
}

func (cb *ConsecutiveFailureBreaker) setState(next State) {
	cb.state = next
	switch next {
	case StateClosed:
		cb.consecutiveFailures = 0
		cb.probesSent = 0
		cb.probesSucceeded = 0
	case StateOpen:
		cb.openedAt = cb.now()
		cb.consecutiveFailures = 0
	case StateHalfOpen:
		cb.probesSent = 0
		cb.probesSucceeded = 0
	}
}

func (cb *ConsecutiveFailureBreaker) now() time.Time {
	if cb.nowFn != nil {
		return cb.nowFn()
	}
	return time.Now()
}

// SetClock overrides the breaker's clock, for tests.
func (cb *ConsecutiveFailureBreaker) SetClock(f func() time.Time) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.nowFn = f
}
