package backoff

import (
	"testing"
	"time"

	"github.com/orrery/resilient/errs"
)

func TestFixed(t *testing.T) {
	s := Fixed(50 * time.Millisecond)
	for attempt := 1; attempt <= 3; attempt++ {
		if got := ComputeDelay(s, attempt, nil); got != 50*time.Millisecond {
			t.Fatalf("attempt %d: got %v want 50ms", attempt, got)
		}
	}
}

func TestExponential_GrowsAndCaps(t *testing.T) {
	s := Exponential(10*time.Millisecond, 2, 100*time.Millisecond)
	want := []time.Duration{10, 20, 40, 80, 100, 100}
	for i, w := range want {
		got := ComputeDelay(s, i+1, nil)
		if got != w*time.Millisecond {
			t.Fatalf("attempt %d: got %v want %v", i+1, got, w*time.Millisecond)
		}
	}
}

func TestFibonacci(t *testing.T) {
	s := Fibonacci(10*time.Millisecond, 0)
	want := []int64{1, 1, 2, 3, 5, 8}
	for i, w := range want {
		got := ComputeDelay(s, i+1, nil)
		if got != time.Duration(w)*10*time.Millisecond {
			t.Fatalf("attempt %d: got %v want %v", i+1, got, time.Duration(w)*10*time.Millisecond)
		}
	}
}

func TestCustom(t *testing.T) {
	s := Custom(func(attempt int, err *errs.TypedError) time.Duration {
		return time.Duration(attempt) * time.Millisecond
	})
	if got := ComputeDelay(s, 3, nil); got != 3*time.Millisecond {
		t.Fatalf("got %v want 3ms", got)
	}
}

func TestApplyJitter_NoneUnchanged(t *testing.T) {
	d := 100 * time.Millisecond
	if got := ApplyJitter(d, NoJitter()); got != d {
		t.Fatalf("got %v want %v", got, d)
	}
}

func TestApplyJitter_ZeroOrNegativeUnchanged(t *testing.T) {
	if got := ApplyJitter(0, Full(50)); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
}

func TestApplyJitter_Full_WithinBounds(t *testing.T) {
	d := 100 * time.Millisecond
	j := Full(50)
	for i := 0; i < 200; i++ {
		got := ApplyJitter(d, j)
		if got < 50*time.Millisecond || got > d {
			t.Fatalf("jittered delay %v out of [50ms,100ms]", got)
		}
	}
}

func TestApplyJitter_Equal_WithinBounds(t *testing.T) {
	d := 100 * time.Millisecond
	j := Equal(50)
	for i := 0; i < 200; i++ {
		got := ApplyJitter(d, j)
		if got < 75*time.Millisecond || got > d {
			t.Fatalf("jittered delay %v out of [75ms,100ms]", got)
		}
	}
}
