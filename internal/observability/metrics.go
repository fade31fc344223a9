package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for the agent runtime.
//
// The metrics track:
//   - Completion request performance by backend and model
//   - Tool invocations by origin (local|mcp) and outcome
//   - Memory compaction events
type Metrics struct {
	// CompletionCounter counts completion calls.
	// Labels: backend (google|openai|anthropic|static), status (success|error)
	CompletionCounter *prometheus.CounterVec

	// CompletionDuration measures completion latency in seconds.
	// Labels: backend
	CompletionDuration *prometheus.HistogramVec

	// ToolInvocationCounter counts tool invocations.
	// Labels: tool, origin (local|mcp), status (success|error)
	ToolInvocationCounter *prometheus.CounterVec

	// CompactionCounter counts memory summarization passes.
	CompactionCounter prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates metrics on a dedicated registry so tests and repeated
// constructions never collide with the default registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		CompletionCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_completions_total",
				Help: "Total completion requests by backend and status.",
			},
			[]string{"backend", "status"},
		),
		CompletionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_completion_duration_seconds",
				Help:    "Completion request latency in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"backend"},
		),
		ToolInvocationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_tool_invocations_total",
				Help: "Total tool invocations by tool, origin and status.",
			},
			[]string{"tool", "origin", "status"},
		),
		CompactionCounter: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "relay_memory_compactions_total",
				Help: "Total memory summarization passes.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.CompletionCounter,
		m.CompletionDuration,
		m.ToolInvocationCounter,
		m.CompactionCounter,
	)

	return m
}

// Registry returns the underlying Prometheus registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCompletion records one completion call.
func (m *Metrics) ObserveCompletion(backend string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.CompletionCounter.WithLabelValues(backend, status).Inc()
	m.CompletionDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}

// ObserveToolInvocation records one tool invocation.
func (m *Metrics) ObserveToolInvocation(tool, origin string, failed bool) {
	status := "success"
	if failed {
		status = "error"
	}
	m.ToolInvocationCounter.WithLabelValues(tool, origin, status).Inc()
}
