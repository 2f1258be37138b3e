package resilient

import (
	"testing"

	"github.com/orrery/resilient/engine"
)

func TestRegistry_GetRegisteredEngine(t *testing.T) {
	fallback, _ := engine.New()
	reg := NewRegistry(fallback)

	custom, _ := engine.New(engine.WithTimeout(1))
	reg.Register("payments", custom)

	got, err := reg.Get("payments")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != custom {
		t.Fatal("expected the registered engine, got a different one")
	}
}

func TestRegistry_FallsBackWhenUnregistered(t *testing.T) {
	fallback, _ := engine.New()
	reg := NewRegistry(fallback)

	got, err := reg.Get("unknown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != fallback {
		t.Fatal("expected the fallback engine")
	}
}

func TestRegistry_ErrorsWithoutFallback(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Get("unknown")
	if err == nil {
		t.Fatal("expected an error when no fallback is configured")
	}
}
