// Package metrics holds the Prometheus collectors for the assistant engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level collectors, auto-registered with the default registry.
var (
	// BackendCalls counts LLM backend calls.
	//
	// Labels:
	//   - provider: "compatible", "ollama", "openai", "disabled"
	//   - outcome: "success" or an error kind such as "timeout"
	BackendCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusbot",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total number of LLM backend calls by outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// BackendCallDuration measures LLM round trip latency.
	BackendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campusbot",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Duration of LLM backend calls in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	// FallbackResponses counts replies served by the rule engine.
	//
	// Labels:
	//   - reason: error kind that forced the fallback
	FallbackResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusbot",
			Name:      "fallback_total",
			Help:      "Total replies produced by the rule-based fallback.",
		},
		[]string{"reason"},
	)

	// DegradedResults counts classification calls that returned defaults.
	DegradedResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusbot",
			Name:      "degraded_total",
			Help:      "Total classification results degraded to safe defaults.",
		},
		[]string{"operation", "kind"},
	)

	// ContextFacilities reports the size of the current facility snapshot.
	ContextFacilities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "campusbot",
			Subsystem: "context",
			Name:      "facilities",
			Help:      "Number of facilities in the current context snapshot.",
		},
	)
)

// ObserveBackendCall records one backend round trip
func ObserveBackendCall(provider, outcome string, took time.Duration) {
	BackendCalls.WithLabelValues(provider, outcome).Inc()
	BackendCallDuration.WithLabelValues(provider).Observe(took.Seconds())
}

// RecordFallback records a reply served by the rule engine
func RecordFallback(reason string) {
	FallbackResponses.WithLabelValues(reason).Inc()
}

// RecordDegraded records a classification that fell back to defaults
func RecordDegraded(operation, kind string) {
	DegradedResults.WithLabelValues(operation, kind).Inc()
}

// SetContextFacilities publishes the snapshot size
func SetContextFacilities(n int) {
	ContextFacilities.Set(float64(n))
}
