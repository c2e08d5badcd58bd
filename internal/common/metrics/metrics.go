// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeFallback = "fallback"
	OutcomePanic    = "panic"
)

var (
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_dispatches_total",
			Help: "Total number of webhook dispatches by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillment_dispatch_duration_seconds",
			Help:    "Duration of one dispatch in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_store_operations_total",
			Help: "Document store operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	LeadsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_leads_captured_total",
			Help: "Quote leads successfully stored",
		},
	)

	LeadNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_lead_notifications_total",
			Help: "Lead notifications by channel and status",
		},
		[]string{"channel", "status"},
	)

	WebhookRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fulfillment_webhook_requests_in_flight",
			Help: "Number of webhook requests being handled",
		},
	)
)

// IntentLabel bounds label cardinality: unrecognized intent names are
// reported as "unknown".
func IntentLabel(intent string, known bool) string {
	if !known {
		return "unknown"
	}
	return intent
}
