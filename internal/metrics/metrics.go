// Package metrics holds the Prometheus collectors for outbound API traffic and
// orchestrator activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	apiInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "zeeguu",
			Subsystem: "api",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight zeeguu API requests.",
		},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zeeguu",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of zeeguu API request attempts.",
		},
		[]string{"endpoint", "outcome"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zeeguu",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of zeeguu API request attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"endpoint"},
	)

	sessionAcquisitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zeeguu",
			Subsystem: "session",
			Name:      "acquisitions_total",
			Help:      "Session acquisitions by result.",
		},
		[]string{"result"},
	)

	gatedOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zeeguu",
			Subsystem: "session",
			Name:      "gated_operations_total",
			Help:      "Operations stopped by a precondition, by operation and reason.",
		},
		[]string{"operation", "reason"},
	)

	wordsInTree = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "zeeguu",
			Subsystem: "words",
			Name:      "entries",
			Help:      "Number of saved words in the current tree.",
		},
	)
)

func init() {
	Registry.MustRegister(
		apiInFlight,
		apiRequests,
		apiDuration,
		sessionAcquisitions,
		gatedOperations,
		wordsInTree,
	)
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// TrackAPIRequest marks a request attempt as started and returns a func that
// records its outcome ("ok", "client_error", "server_error", "failed").
func TrackAPIRequest(endpoint string) func(outcome string) {
	start := time.Now()
	apiInFlight.Inc()
	return func(outcome string) {
		apiInFlight.Dec()
		apiRequests.WithLabelValues(endpoint, outcome).Inc()
		apiDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

// RecordSessionAcquisition counts a finished acquisition attempt.
func RecordSessionAcquisition(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	sessionAcquisitions.WithLabelValues(result).Inc()
}

// RecordGated counts an operation stopped before reaching the network.
func RecordGated(operation, reason string) {
	gatedOperations.WithLabelValues(operation, reason).Inc()
}

// SetWordCount publishes the size of the current word tree.
func SetWordCount(n int) {
	wordsInTree.Set(float64(n))
}
