// Package metrics holds the Prometheus instruments for the call pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
)

// Callback outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeIgnored  = "ignored"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
)

// Metrics holds all Prometheus metrics for callbacks, analytics and retention.
type Metrics struct {
	CallbacksTotal        *prometheus.CounterVec
	SignatureChecksTotal  *prometheus.CounterVec
	SignatureEnforced     prometheus.Gauge
	AnalyticsTotal        *prometheus.CounterVec
	AnalyticsSeconds      prometheus.Histogram
	RetentionDeletedTotal *prometheus.CounterVec
	StoreItems            *prometheus.GaugeVec
}

// New registers the metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "call_callbacks_total",
				Help: "Provider callbacks received by type and outcome",
			},
			[]string{"callback", "outcome"},
		),
		SignatureChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "call_signature_checks_total",
				Help: "Webhook signature checks by result (verified, bypassed, rejected)",
			},
			[]string{"result"},
		),
		SignatureEnforced: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "call_signature_enforced",
				Help: "1 when webhook signatures are enforced, 0 when unconfigured and bypassed",
			},
		),
		AnalyticsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "call_analytics_total",
				Help: "Transcription analytics runs by status",
			},
			[]string{"status"},
		),
		AnalyticsSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "call_analytics_seconds",
				Help:    "Time spent deriving metadata from a transcript",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		RetentionDeletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "call_retention_deleted_total",
				Help: "Items deleted by the retention sweep",
			},
			[]string{"collection"},
		),
		StoreItems: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "call_store_items",
				Help: "Items currently held per collection",
			},
			[]string{"collection"},
		),
	}
}

func (m *Metrics) RecordCallback(callback, outcome string) {
	m.CallbacksTotal.WithLabelValues(callback, outcome).Inc()
}

func (m *Metrics) RecordSignatureCheck(result string) {
	m.SignatureChecksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetSignatureEnforced(enforced bool) {
	if enforced {
		m.SignatureEnforced.Set(1)
		return
	}
	m.SignatureEnforced.Set(0)
}

func (m *Metrics) RecordAnalytics(status string, seconds float64) {
	m.AnalyticsTotal.WithLabelValues(status).Inc()
	m.AnalyticsSeconds.Observe(seconds)
}

func (m *Metrics) RecordSweep(result repositories.SweepResult) {
	m.RetentionDeletedTotal.WithLabelValues("recordings").Add(float64(result.Recordings))
	m.RetentionDeletedTotal.WithLabelValues("transcriptions").Add(float64(result.Transcriptions))
}

func (m *Metrics) SetStoreStats(stats repositories.StoreStats) {
	m.StoreItems.WithLabelValues("recordings").Set(float64(stats.Recordings))
	m.StoreItems.WithLabelValues("transcriptions").Set(float64(stats.Transcriptions))
	m.StoreItems.WithLabelValues("contacts").Set(float64(stats.Contacts))
	m.StoreItems.WithLabelValues("conversations").Set(float64(stats.Conversations))
}
