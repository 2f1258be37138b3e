package resilient

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestInit_OverridesDefaultBeforeFirstUse must run before any other test in
// this package touches Default(), since defaultOnce guards a single
// process-wide initialization. It is declared first in this file so the
// standard (non-shuffled, non-parallel) test runner reaches it first.
func TestInit_OverridesDefaultBeforeFirstUse(t *testing.T) {
	custom, err := New(WithTimeout(250 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Init(custom)
	if Default() != custom {
		t.Fatalf("Default() did not return the Init-supplied engine")
	}
}

func TestRun_UsesDefaultEngine(t *testing.T) {
	r := Run(context.Background(), func(context.Context) (int, error) { return 9, nil })
	if !r.Ok() || r.Data != 9 {
		t.Fatalf("got %+v", r)
	}
}

func TestRunOrThrow_PropagatesError(t *testing.T) {
	_, err := RunOrThrow(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunAll_UsesDefaultEngine(t *testing.T) {
	tasks := []Task[int]{
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
	}
	results := RunAll(context.Background(), tasks, BatchConfig{Concurrency: 2})
	if len(results) != 2 || !results[0].Ok() || !results[1].Ok() {
		t.Fatalf("got %+v", results)
	}
}

func TestPartitionAll_SplitsSuccessesAndFailures(t *testing.T) {
	tasks := []Task[int]{
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, errors.New("fail") },
	}
	successes, failures := PartitionAll(context.Background(), tasks, BatchConfig{Concurrency: 2})
	if len(successes) != 1 || len(failures) != 1 {
		t.Fatalf("successes=%d failures=%d", len(successes), len(failures))
	}
	if successes[0].Index != 0 || failures[0].Index != 1 {
		t.Fatalf("indexes not preserved: successes=%+v failures=%+v", successes, failures)
	}
}
