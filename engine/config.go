package engine

import (
	"time"

	"github.com/orrery/resilient/backoff"
	"github.com/orrery/resilient/budget"
	"github.com/orrery/resilient/circuit"
	"github.com/orrery/resilient/errs"
	"github.com/orrery/resilient/hedge"
	"github.com/orrery/resilient/observe"
)

// RetryConfig controls how many times, and how, a failed attempt is retried.
type RetryConfig struct {
	MaxRetries int
	Strategy   backoff.Strategy
	Jitter     backoff.Jitter
	ShouldRetry func(attempt int, err *errs.TypedError) bool
}

// HedgeConfig controls speculative duplicate attempts.
type HedgeConfig struct {
	Enabled               bool
	MaxHedges             int
	Trigger               hedge.Trigger
	CancelOnFirstTerminal bool
}

// settings is the overlay-able per-call configuration. Engine holds a base
// settings value; Run clones it and applies CallOptions on top.
type settings struct {
	timeout     time.Duration
	ignoreAbort bool
	retry       RetryConfig
	hedge       HedgeConfig
	mapError    func(*errs.TypedError) *errs.TypedError
	hooks       observe.Hooks
	logger      observe.Logger
	concurrency int

	// Breaker and budget are engine-wide, not overlaid per call, but are
	// carried here so New can validate them alongside everything else.
	circuitCfg circuit.Config
	budgetCfg  budget.Config

	rules     []errs.Rule
	rulesMode errs.Mode
}

func defaultSettings() settings {
	return settings{
		ignoreAbort: true,
		retry: RetryConfig{
			MaxRetries: 0,
			Strategy:   backoff.Fixed(0),
			Jitter:     backoff.NoJitter(),
		},
		logger:    observe.NoopLogger{},
		rulesMode: errs.Extend,
	}
}

// Option configures an Engine at construction time, or a single call when
// passed to Run/RunOrThrow — the same functional-option value works in
// either position since both operate on a cloned settings value.
type Option func(*settings)

func WithTimeout(d time.Duration) Option { return func(s *settings) { s.timeout = d } }

func WithIgnoreAbort(v bool) Option { return func(s *settings) { s.ignoreAbort = v } }

func WithRetry(cfg RetryConfig) Option { return func(s *settings) { s.retry = cfg } }

func WithCircuitBreaker(cfg circuit.Config) Option {
	return func(s *settings) { s.circuitCfg = cfg }
}

func WithBudget(cfg budget.Config) Option { return func(s *settings) { s.budgetCfg = cfg } }

func WithHedge(cfg HedgeConfig) Option { return func(s *settings) { s.hedge = cfg } }

func WithConcurrency(n int) Option { return func(s *settings) { s.concurrency = n } }

func WithRules(rules []errs.Rule, mode errs.Mode) Option {
	return func(s *settings) { s.rules = rules; s.rulesMode = mode }
}

func WithMapError(fn func(*errs.TypedError) *errs.TypedError) Option {
	return func(s *settings) { s.mapError = fn }
}

func WithHooks(h observe.Hooks) Option { return func(s *settings) { s.hooks = h } }

func WithLogger(l observe.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// Clamp ceilings, ported from the distilled policy schema's normalization
// pass: rather than rejecting a borderline configuration outright, a few
// fields are silently bounded into a sane range.
const (
	maxRetries        = 10
	maxHedges         = 3
	maxCircuitCooldown = 10 * time.Minute
)

// Validate rejects structurally invalid settings: the config-normalization
// step of Run, and the construction-time check in New.
func (s *settings) Validate() error {
	if s.retry.MaxRetries < 0 {
		return errs.ValidationError{Field: "retry.maxRetries", Msg: "must be >= 0"}
	}
	if s.retry.MaxRetries > maxRetries {
		s.retry.MaxRetries = maxRetries
	}
	if err := s.retry.Jitter.Validate(); err != nil {
		return err
	}
	if s.timeout < 0 {
		return errs.ValidationError{Field: "timeout", Msg: "must be >= 0"}
	}
	if s.hedge.Enabled {
		if s.hedge.MaxHedges < 0 {
			return errs.ValidationError{Field: "hedge.maxHedges", Msg: "must be >= 0"}
		}
		if s.hedge.MaxHedges > maxHedges {
			s.hedge.MaxHedges = maxHedges
		}
	}
	if s.circuitCfg.Enabled && s.circuitCfg.ResetTimeout > maxCircuitCooldown {
		s.circuitCfg.ResetTimeout = maxCircuitCooldown
	}
	return nil
}
