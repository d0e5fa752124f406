package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeRecorded  = "recorded"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"

	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics counts donation-pipeline events. Counters register on the
// default registry, exposed by the server's /metrics handler.
type Metrics struct {
	webhookEvents      *prometheus.CounterVec
	donationsRecorded  *prometheus.CounterVec
	checkoutsInitiated *prometheus.CounterVec
	receiptsDispatched *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		webhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Webhook deliveries by event type and handling result.",
		}, []string{"event", "result"}),
		donationsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "donations_recorded_total",
			Help: "Donation records by outcome.",
		}, []string{"outcome"}),
		checkoutsInitiated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "checkouts_initiated_total",
			Help: "Checkout initializations by result.",
		}, []string{"result"}),
		receiptsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "receipts_dispatched_total",
			Help: "Receipt email dispatches by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) RecordWebhookEvent(event, result string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(event, result).Inc()
}

func (m *Metrics) RecordDonation(outcome string) {
	if m == nil {
		return
	}
	m.donationsRecorded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCheckout(result string) {
	if m == nil {
		return
	}
	m.checkoutsInitiated.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordReceipt(result string) {
	if m == nil {
		return
	}
	m.receiptsDispatched.WithLabelValues(result).Inc()
}
