package hedge

import (
	"testing"
	"time"
)

func TestLatencyTrigger_ShouldSpawnHedge(t *testing.T) {
	snap := LatencySnapshot{
		P50: 10 * time.Millisecond,
		P90: 50 * time.Millisecond,
		P95: 50 * time.Millisecond,
		P99: 100 * time.Millisecond,
	}

	tests := []struct {
		name       string
		percentile float64
		elapsed    time.Duration
		attempts   int
		maxHedges  int
		want       bool
		wantWait   time.Duration
	}{
		{
			name:       "P50 Trigger - Below Threshold",
			percentile: 0.50,
			elapsed:    5 * time.Millisecond,
			attempts:   1,
			maxHedges:  1,
			want:       false,
			wantWait:   5 * time.Millisecond, // 10 - 5
		},
		{
			name:       "P50 Trigger - Above Threshold",
			percentile: 0.50,
			elapsed:    11 * time.Millisecond,
			attempts:   1,
			maxHedges:  1,
			want:       true,
			wantWait:   0,
		},
		{
			name:       "P99 Trigger - Below Threshold",
			percentile: 0.99,
			elapsed:    90 * time.Millisecond,
			attempts:   1,
			maxHedges:  1,
			want:       false,
			wantWait:   10 * time.Millisecond,
		},
		{
			name:       "P99 Trigger - Above Threshold",
			percentile: 0.99,
			elapsed:    101 * time.Millisecond,
			attempts:   1,
			maxHedges:  1,
			want:       true,
			wantWait:   0,
		},
		{
			name:       "Already Hedged - Should Stop",
			percentile: 0.50,
			elapsed:    20 * time.Millisecond,
			attempts:   2,
			maxHedges:  1,
			want:       false,
			wantWait:   0,
		},
		{
			name:       "Zero Stats",
			percentile: 0.50,
			elapsed:    100 * time.Millisecond,
			attempts:   1,
			maxHedges:  1,
			want:       false,
			wantWait:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := LatencyPercentile(tt.percentile)
			state := HedgeState{
				RetryAttempt:     1,
				Elapsed:          tt.elapsed,
				AttemptsLaunched: tt.attempts,
				MaxHedges:        tt.maxHedges,
				Snapshot:         snap,
			}
			if tt.name == "Zero Stats" {
				state.Snapshot = LatencySnapshot{}
			}

			got, gotWait := trigger.ShouldSpawnHedge(state)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if gotWait != tt.wantWait {
				t.Errorf("gotWait %v, want %v", gotWait, tt.wantWait)
			}
		})
	}
}

func TestLatencyTrigger_NeverFiresPastFirstRetryAttempt(t *testing.T) {
	trigger := LatencyPercentile(0.50)
	state := HedgeState{
		RetryAttempt:     2,
		Elapsed:          time.Hour,
		AttemptsLaunched: 1,
		MaxHedges:        1,
		Snapshot:         LatencySnapshot{P50: time.Millisecond},
	}
	if should, wait := trigger.ShouldSpawnHedge(state); should || wait != 0 {
		t.Fatalf("should=%v wait=%v, want false/0 once a call is already retrying", should, wait)
	}
}

func TestLatencySnapshot_AtSnapsToNearestTrackedPercentile(t *testing.T) {
	snap := LatencySnapshot{
		P50: 10 * time.Millisecond,
		P90: 20 * time.Millisecond,
		P95: 30 * time.Millisecond,
		P99: 40 * time.Millisecond,
	}
	if got := snap.At(0.97); got != 40*time.Millisecond {
		t.Errorf("At(0.97) = %v, want P99 (40ms)", got)
	}
	if got := snap.At(0.50); got != 10*time.Millisecond {
		t.Errorf("At(0.50) = %v, want P50 (10ms)", got)
	}
}
