package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanvault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_payments_total",
			Help: "Payment state transitions by provider",
		},
		[]string{"provider", "status"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_webhook_events_total",
			Help: "Provider webhook deliveries by outcome",
		},
		[]string{"provider", "outcome"},
	)

	PayoutsPaidTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_payouts_paid_total",
			Help: "Total number of payouts marked paid",
		},
		[]string{"kind"},
	)

	CreditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_credits_total",
			Help: "Credits moved through the ledger",
		},
		[]string{"type"},
	)

	SweepItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_sweep_items_total",
			Help: "Items handled by cron sweeps",
		},
		[]string{"sweep", "outcome"},
	)

	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanvault_sweep_duration_seconds",
			Help:    "Cron sweep duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sweep"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fanvault_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_suggestions_total",
			Help: "Chatter reply suggestions by source",
		},
		[]string{"source"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPayment(provider, status string) {
	PaymentsTotal.WithLabelValues(provider, status).Inc()
}

func RecordWebhook(provider, outcome string) {
	WebhookEventsTotal.WithLabelValues(provider, outcome).Inc()
}

func RecordPayout(kind string) {
	PayoutsPaidTotal.WithLabelValues(kind).Inc()
}

func RecordCredits(txType string, amount int64) {
	if amount <= 0 {
		return
	}
	CreditsTotal.WithLabelValues(txType).Add(float64(amount))
}

func RecordSweep(sweep string, duration float64, processed, failed int) {
	SweepDuration.WithLabelValues(sweep).Observe(duration)
	SweepItemsTotal.WithLabelValues(sweep, "processed").Add(float64(processed))
	SweepItemsTotal.WithLabelValues(sweep, "failed").Add(float64(failed))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordSuggestion(source string) {
	SuggestionsTotal.WithLabelValues(source).Inc()
}
