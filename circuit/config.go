package circuit

import "time"

// Config describes one engine's breaker. Enabled defaults to false: an
// engine with a zero-value Config has no breaker at all.
type Config struct {
	Enabled bool

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker. Defaults to 5 when <= 0.
	FailureThreshold int

	// ResetTimeout is how long the breaker stays open before admitting a
	// half-open probe. Defaults to 10s when <= 0.
	ResetTimeout time.Duration

	// HalfOpenMaxProbes bounds concurrent probes while half-open.
	// Defaults to 1 when <= 0.
	HalfOpenMaxProbes int

	// ShouldCountAsFailure filters which error codes count toward the
	// breaker's failure accounting. Nil makes New install the default
	// predicate, which counts every code except BUDGET_EXCEEDED and
	// VALIDATION.
	ShouldCountAsFailure func(code string) bool
}

// New builds a breaker from cfg, or nil if cfg.Enabled is false.
func New(cfg Config) *ConsecutiveFailureBreaker {
	if !cfg.Enabled {
		return nil
	}
	cb := NewConsecutiveFailureBreaker(cfg.FailureThreshold, cfg.ResetTimeout)
	if cfg.HalfOpenMaxProbes > 0 {
		cb.maxProbes = cfg.HalfOpenMaxProbes
	}
	cb.countsAsFailure = cfg.ShouldCountAsFailure
	if cb.countsAsFailure == nil {
		cb.countsAsFailure = defaultCountsAsFailure
	}
	return cb
}

// defaultCountsAsFailure excludes the two codes the rest of the system
// treats as expected, transient admission-control outcomes rather than
// dependency failures: a denied budget attempt and a caller input that
// failed validation before any attempt was made.
func defaultCountsAsFailure(code string) bool {
	return code != "BUDGET_EXCEEDED" && code != "VALIDATION"
}
