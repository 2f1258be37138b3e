// Package otelobserve adapts the engine's observe.Hooks onto OpenTelemetry:
// a span per call with an event for each retry, abort and breaker state
// change, and a duration histogram instrument.
package otelobserve

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/orrery/resilient/circuit"
	"github.com/orrery/resilient/errs"
	"github.com/orrery/resilient/observe"
)

// Observer ties a tracer and a meter to one engine's lifecycle.
type Observer struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	name     string

	span trace.Span
}

// New creates an Observer that starts spans named name on tracer and records
// call durations on a name+".call_duration" histogram created from meter.
func New(tracer trace.Tracer, meter metric.Meter, name string) (*Observer, error) {
	hist, err := meter.Float64Histogram(
		name+".call_duration",
		metric.WithDescription("Call duration in seconds."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Observer{tracer: tracer, duration: hist, name: name}, nil
}

// StartSpan begins a span for one call and returns the derived context to
// run the call under; Hooks below expect to be used for that same call.
func (o *Observer) StartSpan(ctx context.Context) (context.Context, *Observer) {
	spanCtx, span := o.tracer.Start(ctx, o.name)
	clone := &Observer{tracer: o.tracer, duration: o.duration, name: o.name, span: span}
	return spanCtx, clone
}

// Hooks returns observe.Hooks bound to this Observer's active span (set by
// StartSpan). Call StartSpan once per engine call and use the returned
// Observer's Hooks for that call.
func (o *Observer) Hooks() observe.Hooks {
	return observe.Hooks{
		OnRetry: func(attempt int, err *errs.TypedError, delay time.Duration) {
			if o.span == nil {
				return
			}
			o.span.AddEvent("retry", trace.WithAttributes(
				attribute.Int("attempt", attempt),
				attribute.String("code", codeOf(err)),
				attribute.String("delay", delay.String()),
			))
		},
		OnFinally: func(m observe.Metrics) {
			o.duration.Record(context.Background(), m.TotalDuration.Seconds())
			if o.span != nil {
				o.span.SetAttributes(attribute.Int("total_attempts", m.TotalAttempts))
				o.span.End()
			}
		},
		OnAbort: func(err *errs.TypedError) {
			if o.span != nil {
				o.span.AddEvent("aborted")
			}
		},
		OnCircuitStateChange: func(from, to circuit.State) {
			if o.span != nil {
				o.span.AddEvent("circuit_state_change", trace.WithAttributes(
					attribute.String("from", from.String()),
					attribute.String("to", to.String()),
				))
			}
		},
	}
}

func codeOf(err *errs.TypedError) string {
	if err == nil {
		return errs.CodeUnknown
	}
	return err.Code
}
