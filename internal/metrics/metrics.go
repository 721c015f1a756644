package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the webhook reconciliation pipeline
var (
	WebhookEventsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_received_total",
			Help: "Total number of webhook deliveries received, per provider",
		},
		[]string{"provider"},
	)

	WebhookEventsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_rejected_total",
			Help: "Total number of webhook deliveries rejected before processing",
		},
		[]string{"provider", "reason"},
	)

	WebhookEventsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_applied_total",
			Help: "Total number of semantic events applied to the ledger",
		},
		[]string{"provider", "event"},
	)

	WebhookProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_duration_seconds",
			Help:    "Duration of webhook handling from receipt to acknowledgment",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	PayoutInitiationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_initiations_total",
			Help: "Total number of payout legs initiated after settlement",
		},
		[]string{"provider", "result"},
	)
)

func Register() {
	prometheus.MustRegister(
		WebhookEventsReceived,
		WebhookEventsRejected,
		WebhookEventsApplied,
		WebhookProcessingDuration,
		PayoutInitiationsTotal,
	)
}
