package engine

import (
	"sync"

	"github.com/orrery/resilient/budget"
	"github.com/orrery/resilient/circuit"
	"github.com/orrery/resilient/errs"
	"github.com/orrery/resilient/hedge"
)

// Engine owns the breaker, the budget, the normalizer, and the default
// settings every Run call is overlaid onto.
type Engine struct {
	base       settings
	normalizer *errs.Normalizer
	breaker    *circuit.ConsecutiveFailureBreaker
	bud        budget.Budget
	tracker    hedge.LatencyTracker

	mu               sync.Mutex
	lastBreakerState circuit.State
}

// New builds an Engine from opts. Invalid configuration (out-of-range
// values, duplicate error-rule codes) is a programmer error reported here,
// before any task ever runs.
func New(opts ...Option) (*Engine, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	n, err := errs.NewNormalizer(s.rules, s.rulesMode)
	if err != nil {
		return nil, err
	}

	eng := &Engine{
		base:       s,
		normalizer: n,
		breaker:    circuit.New(s.circuitCfg),
		bud:        budget.New(s.budgetCfg),
		tracker:    hedge.NewRingBufferTracker(256),
	}
	eng.lastBreakerState = circuit.StateClosed
	return eng, nil
}

// WithOptions returns a new Engine layering extra defaults on top of eng's
// current settings, mirroring the distilled spec's withConfig. Breaker and
// budget are NOT re-created — they continue to own their accumulated state
// unless the returned Engine's circuit/budget config actually differs, in
// which case a fresh breaker/budget is built since there is no in-flight
// state worth preserving for a reconfigured gate.
func (eng *Engine) WithOptions(opts ...Option) (*Engine, error) {
	s := eng.base
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n, err := errs.NewNormalizer(s.rules, s.rulesMode)
	if err != nil {
		return nil, err
	}

	derived := &Engine{base: s, normalizer: n, tracker: eng.tracker}
	derived.lastBreakerState = circuit.StateClosed
	if sameCircuitConfig(s.circuitCfg, eng.base.circuitCfg) {
		derived.breaker = eng.breaker
	} else {
		derived.breaker = circuit.New(s.circuitCfg)
	}
	if sameBudgetConfig(s.budgetCfg, eng.base.budgetCfg) {
		derived.bud = eng.bud
	} else {
		derived.bud = budget.New(s.budgetCfg)
	}
	return derived, nil
}

// sameCircuitConfig compares the fields that affect breaker identity.
// ShouldCountAsFailure is a func value and therefore not comparable with ==;
// it is left out of the comparison, so changing only that predicate keeps
// the existing breaker, which keeps the predicate it was built with.
func sameCircuitConfig(a, b circuit.Config) bool {
	return a.Enabled == b.Enabled &&
		a.FailureThreshold == b.FailureThreshold &&
		a.ResetTimeout == b.ResetTimeout &&
		a.HalfOpenMaxProbes == b.HalfOpenMaxProbes
}

func sameBudgetConfig(a, b budget.Config) bool { return a == b }
