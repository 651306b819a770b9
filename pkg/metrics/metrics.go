// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequestDuration tracks backend request duration.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "status"},
	)

	// BackendRequestsTotal tracks total backend requests.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total backend requests",
		},
		[]string{"operation", "status"},
	)

	// MessagesTotal tracks messages appended to the conversation log.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Messages appended to the conversation log",
		},
		[]string{"sender"},
	)

	// RegenerationsTotal tracks regeneration attempts by outcome.
	RegenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regenerations_total",
			Help: "Regeneration attempts by outcome",
		},
		[]string{"outcome"},
	)

	// StaleResponsesDropped tracks late responses discarded after a
	// session switch.
	StaleResponsesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stale_responses_dropped_total",
			Help: "Late backend responses discarded for stale sessions",
		},
		[]string{"operation"},
	)

	// AttachmentsActive tracks attachments known for the active session.
	AttachmentsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "attachments_active",
			Help: "Attachments in the active session",
		},
	)

	// SessionsKnown tracks sessions in the registry.
	SessionsKnown = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_known",
			Help: "Sessions in the registry",
		},
	)
)

// RecordRequest records metrics for a backend request.
func RecordRequest(operation, status string, duration float64) {
	BackendRequestDuration.WithLabelValues(operation, status).Observe(duration)
	BackendRequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordMessage records a message appended to the log.
func RecordMessage(sender string) {
	MessagesTotal.WithLabelValues(sender).Inc()
}

// RecordRegeneration records a regeneration attempt outcome.
func RecordRegeneration(outcome string) {
	RegenerationsTotal.WithLabelValues(outcome).Inc()
}

// RecordStaleDrop records a discarded stale response.
func RecordStaleDrop(operation string) {
	StaleResponsesDropped.WithLabelValues(operation).Inc()
}
