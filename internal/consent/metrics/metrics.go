package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for consent operations.
type Metrics struct {
	EvaluationsTotal    *prometheus.CounterVec
	RegistrationsTotal  *prometheus.CounterVec
	StoreFailuresTotal  prometheus.Counter
	RegistrationLatency prometheus.Histogram
}

// New registers and returns consent metrics collectors. Call once per process:
// promauto panics on duplicate registration.
func New() *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_consent_evaluations_total",
			Help: "Total number of consent evaluations, labeled by decision reason",
		}, []string{"reason"}),
		RegistrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_consent_registrations_total",
			Help: "Total number of consent registrations, labeled by outcome",
		}, []string{"outcome"}),
		StoreFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_consent_store_failures_total",
			Help: "Total number of consent store infrastructure failures",
		}),
		RegistrationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "custodia_consent_registration_latency_seconds",
			Help:    "Latency of consent registration operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementEvaluations(reason string) {
	m.EvaluationsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementRegistrations(outcome string) {
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementStoreFailures() {
	m.StoreFailuresTotal.Inc()
}

func (m *Metrics) ObserveRegistrationLatency(durationSeconds float64) {
	m.RegistrationLatency.Observe(durationSeconds)
}
