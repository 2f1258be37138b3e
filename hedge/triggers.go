package hedge

import "time"

// LatencyTrigger spawns a hedge once the current attempt's elapsed time
// exceeds the tracked latency at Percentile.
type LatencyTrigger struct {
	// Percentile is a fraction in (0, 1], e.g. 0.95 for p95.
	Percentile float64
}

// LatencyPercentile builds a LatencyTrigger for percentile p.
func LatencyPercentile(p float64) LatencyTrigger {
	return LatencyTrigger{Percentile: p}
}

// ShouldSpawnHedge checks if the hedge should be spawned based on latency stats.
func (t LatencyTrigger) ShouldSpawnHedge(state HedgeState) (bool, time.Duration) {
	if state.RetryAttempt > 1 {
		// This call is already retrying a prior failure, not racing the
		// tail of a healthy dependency — hedging for latency isn't the
		// right tool here, so defer to the retry loop instead.
		return false, 0
	}

	threshold := state.Snapshot.At(t.Percentile)
	if threshold <= 0 {
		return false, 0
	}

	if state.Elapsed > threshold {
		if state.AttemptsLaunched >= 1+state.MaxHedges {
			return false, 0
		}
		return true, 0
	}

	return false, threshold - state.Elapsed
}
