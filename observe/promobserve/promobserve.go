// Package promobserve adapts the engine's observe.Hooks onto Prometheus
// metrics: a counter of calls by final outcome code, a histogram of call
// duration, a counter of retries, and a gauge of the current breaker state.
package promobserve

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orrery/resilient/circuit"
	"github.com/orrery/resilient/errs"
	"github.com/orrery/resilient/observe"
)

// Observer owns the registered collectors for one engine.
type Observer struct {
	attempts        *prometheus.CounterVec
	callDuration    prometheus.Histogram
	retries         prometheus.Counter
	breakerState    prometheus.Gauge
}

// New registers the collectors on reg and returns an Observer whose Hooks
// method produces observe.Hooks wired to them.
func New(reg prometheus.Registerer, name string) *Observer {
	o := &Observer{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: name + "_attempts_total",
			Help: "Total calls by final outcome code.",
		}, []string{"code"}),
		callDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name + "_call_duration_seconds",
			Help:    "Call duration in seconds, success or failure.",
			Buckets: prometheus.DefBuckets,
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: name + "_retries_total",
			Help: "Total retries issued.",
		}),
		breakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name + "_circuit_state",
			Help: "Current breaker state: 0=closed 1=open 2=half-open.",
		}),
	}
	reg.MustRegister(o.attempts, o.callDuration, o.retries, o.breakerState)
	return o
}

// Hooks returns an observe.Hooks value wired to this Observer's collectors.
func (o *Observer) Hooks() observe.Hooks {
	return observe.Hooks{
		OnSuccess: func(_ any, m observe.Metrics) {
			o.attempts.WithLabelValues("SUCCESS").Inc()
			o.callDuration.Observe(m.TotalDuration.Seconds())
			o.retries.Add(float64(m.TotalRetries))
		},
		OnError: func(err *errs.TypedError, m observe.Metrics) {
			o.attempts.WithLabelValues(codeOf(err)).Inc()
			o.callDuration.Observe(m.TotalDuration.Seconds())
			o.retries.Add(float64(m.TotalRetries))
		},
		OnCircuitStateChange: func(_ circuit.State, to circuit.State) {
			o.breakerState.Set(stateValue(to))
		},
	}
}

func codeOf(err *errs.TypedError) string {
	if err == nil {
		return errs.CodeUnknown
	}
	return err.Code
}

func stateValue(s circuit.State) float64 {
	switch s {
	case circuit.StateOpen:
		return 1
	case circuit.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
