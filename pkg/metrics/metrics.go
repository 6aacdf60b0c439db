// Package metrics collects Prometheus instrumentation for the runtime.
// Everything registers on a private registry so tests can run side by side
// without default-registry collisions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "axis"

// Metrics holds every instrument the runtime emits. A single instance is
// created in main and threaded through the components that record on it.
type Metrics struct {
	registry *prometheus.Registry

	// Queue.
	JobsEnqueued   *prometheus.CounterVec // labels: source
	JobTransitions *prometheus.CounterVec // labels: from, to
	JobDuration    *prometheus.HistogramVec
	JobsRecovered  prometheus.Counter
	QueueDepth     prometheus.Gauge

	// Message bus.
	Dispatches      *prometheus.CounterVec // labels: type, result
	DispatchSeconds *prometheus.HistogramVec
	BusRejected     *prometheus.CounterVec // labels: reason

	// Gateway.
	WSConnections   prometheus.Gauge
	EventsPublished prometheus.Counter

	// Sandbox.
	SandboxExecutions *prometheus.CounterVec // labels: tier, outcome
	SandboxKills      *prometheus.CounterVec // labels: reason

	// Validator.
	ValidatorVerdicts *prometheus.CounterVec // labels: verdict, mode

	// Integrity scanner.
	IntegrityOrphans *prometheus.GaugeVec // labels: probe

	// LLM provider.
	LLMRequests       *prometheus.CounterVec // labels: provider, outcome
	LLMRequestSeconds *prometheus.HistogramVec
}

// New builds the full instrument set on a fresh registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		JobsEnqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "jobs_enqueued_total",
			Help:      "Jobs accepted into the queue, by source.",
		}, []string{"source"}),
		JobTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "job_transitions_total",
			Help:      "State machine transitions, by edge.",
		}, []string{"from", "to"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "job_duration_seconds",
			Help:      "Wall time from enqueue to a terminal state.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"status"}),
		JobsRecovered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "jobs_recovered_total",
			Help:      "Stale jobs the watchdog failed over from dead workers.",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Jobs currently in the queued state.",
		}),

		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "dispatches_total",
			Help:      "Message dispatches, by message type and result.",
		}, []string{"type", "result"}),
		DispatchSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "dispatch_seconds",
			Help:      "Handler latency, by message type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		BusRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "rejected_total",
			Help:      "Messages refused before reaching a handler, by reason.",
		}, []string{"reason"}),

		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "ws_connections",
			Help:      "Currently open WebSocket connections.",
		}),
		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "events_published_total",
			Help:      "Events written to the event log for broadcast.",
		}),

		SandboxExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sandbox",
			Name:      "executions_total",
			Help:      "Gear action executions, by tier and outcome.",
		}, []string{"tier", "outcome"}),
		SandboxKills: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sandbox",
			Name:      "kills_total",
			Help:      "Sandboxes terminated by the host, by reason.",
		}, []string{"reason"}),

		ValidatorVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "verdicts_total",
			Help:      "Plan validation verdicts, by verdict and evaluation mode.",
		}, []string{"verdict", "mode"}),

		IntegrityOrphans: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "integrity",
			Name:      "orphans",
			Help:      "Referential anomalies found by the last integrity scan, by probe.",
		}, []string{"probe"}),

		LLMRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "LLM completions requested, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		LLMRequestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_seconds",
			Help:      "LLM completion latency, by provider.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"provider"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
