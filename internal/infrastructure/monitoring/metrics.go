package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/curelink/curelink/pkg/constants"
)

// Metrics manages the Prometheus metrics of the quota subsystem.
type Metrics struct {
	SearchRequests   *prometheus.CounterVec
	SearchLatency    *prometheus.HistogramVec
	QuotaDenials     *prometheus.CounterVec
	IdentityMints    prometheus.Counter
	SignalDegraded   *prometheus.CounterVec
	ProviderFailures *prometheus.CounterVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SearchRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curelink_search_requests_total",
				Help: "Total number of search requests by admission result.",
			},
			[]string{"result"},
		),
		SearchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curelink_search_latency_seconds",
				Help:    "Latency of dispatched searches.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		QuotaDenials: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curelink_quota_denials_total",
				Help: "Total number of denied search admissions by binding signal.",
			},
			[]string{"signal"},
		),
		IdentityMints: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "curelink_identity_mints_total",
				Help: "Total number of anonymous identities minted.",
			},
		),
		SignalDegraded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curelink_quota_signal_degraded_total",
				Help: "Total number of quota signal evaluations degraded by store failure.",
			},
			[]string{"signal"},
		),
		ProviderFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curelink_scholar_provider_failures_total",
				Help: "Total number of scholarly provider call failures.",
			},
			[]string{"provider"},
		),
	}
}

// RecordSearch records a search request outcome and its latency.
func (m *Metrics) RecordSearch(result string, duration time.Duration) {
	m.SearchRequests.WithLabelValues(result).Inc()
	m.SearchLatency.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordQuotaDenial records a denial attributed to the binding signal.
func (m *Metrics) RecordQuotaDenial(signal constants.QuotaSignal) {
	m.QuotaDenials.WithLabelValues(string(signal)).Inc()
}

// RecordIdentityMint records issuance of a new anonymous identity.
func (m *Metrics) RecordIdentityMint() {
	m.IdentityMints.Inc()
}

// RecordSignalDegraded records a fail-open/fail-closed degradation.
func (m *Metrics) RecordSignalDegraded(signal constants.QuotaSignal) {
	m.SignalDegraded.WithLabelValues(string(signal)).Inc()
}

// RecordProviderFailure records a scholarly provider call failure.
func (m *Metrics) RecordProviderFailure(provider string) {
	m.ProviderFailures.WithLabelValues(provider).Inc()
}
