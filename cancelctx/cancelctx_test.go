package cancelctx

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestMerge_NoExtra_ReturnsParentUnchanged(t *testing.T) {
	parent := context.Background()
	ctx, cleanup := Merge(parent)
	defer cleanup()
	if ctx != parent {
		t.Fatal("expected the same parent context when no extra sources given")
	}
}

func TestMerge_CancelsWhenExtraFires(t *testing.T) {
	parent := context.Background()
	extra, cancelExtra := context.WithCancel(context.Background())

	ctx, cleanup := Merge(parent, extra)
	defer cleanup()

	cancelExtra()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("merged context did not become Done after extra source fired")
	}
}

func TestMerge_CancelsWhenParentFires(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	extra := context.Background()

	ctx, cleanup := Merge(parent, extra)
	defer cleanup()

	cancelParent()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("merged context did not become Done after parent fired")
	}
}

func TestMerge_MultipleExtraSources(t *testing.T) {
	parent := context.Background()
	a, cancelA := context.WithCancel(context.Background())
	b, _ := context.WithCancel(context.Background())
	c, _ := context.WithCancel(context.Background())

	ctx, cleanup := Merge(parent, a, b, c)
	defer cleanup()

	cancelA()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("merged context did not fire when one of several sources cancelled")
	}
}

func TestMerge_CleanupLeavesNoGoroutineRunning(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		extra, cancel := context.WithCancel(context.Background())
		ctx, cleanup := Merge(context.Background(), extra)
		_ = ctx
		cleanup()
		cancel()
	}

	// Allow the scheduler to settle.
	for i := 0; i < 5; i++ {
		runtime.Gosched()
	}
	time.Sleep(10 * time.Millisecond)

	after := runtime.NumGoroutine()
	if after > before+2 {
		t.Fatalf("goroutine leak suspected: before=%d after=%d", before, after)
	}
}

func TestMerge_CleanupIdempotent(t *testing.T) {
	extra, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, cleanup := Merge(context.Background(), extra)
	cleanup()
	cleanup() // must not panic or hang
}
