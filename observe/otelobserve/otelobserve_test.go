package otelobserve

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/orrery/resilient/backoff"
	"github.com/orrery/resilient/engine"
)

func TestObserver_RecordsSpanEventsAcrossRetries(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	obs, err := New(tp.Tracer("resilient-test"), mp.Meter("resilient-test"), "call")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	spanCtx, obs := obs.StartSpan(context.Background())

	eng, err := engine.New(engine.WithRetry(engine.RetryConfig{MaxRetries: 2, Strategy: backoff.Fixed(0)}))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	calls := 0
	r := engine.Run(spanCtx, eng, func(context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 1, nil
	}, engine.WithHooks(obs.Hooks()))

	if !r.Ok() {
		t.Fatalf("got %+v", r)
	}
	if r.Metrics.TotalRetries != 1 {
		t.Errorf("TotalRetries = %d, want 1", r.Metrics.TotalRetries)
	}
}

func TestObserver_HooksToleratesNilSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	obs, err := New(tp.Tracer("resilient-test"), mp.Meter("resilient-test"), "call")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hooks := obs.Hooks()
	// No StartSpan call: span is nil. The hooks must no-op rather than panic.
	hooks.OnAbort(nil)
	hooks.OnCircuitStateChange(0, 0)
}
