package registry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolve outcome labels.
const (
	outcomeMatched    = "matched"
	outcomeNegotiated = "negotiated"
	outcomeNoMatch    = "no_match"
	outcomeParseError = "parse_error"
)

// Metrics holds Prometheus metrics for endpoint resolution.
type Metrics struct {
	resolvesTotal   *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics returns the singleton registry metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = newMetrics()
	})
	return metricsInstance
}

// MustRegister registers all resolution metric collectors with the
// given Prometheus registry. promauto registers with the default global
// registry, but the server exposes /metrics from a custom one; calling
// MustRegister bridges the two.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.resolvesTotal,
		m.resolveDuration,
	)
}

// Init pre-initializes the outcome label values so the metrics appear
// in /metrics output before the first request. Idempotent.
func (m *Metrics) Init() {
	for _, outcome := range []string{
		outcomeMatched, outcomeNegotiated,
		outcomeNoMatch, outcomeParseError,
	} {
		m.resolvesTotal.WithLabelValues(outcome)
		m.resolveDuration.WithLabelValues(outcome)
	}
}

// ObserveResolve records one resolution attempt.
func (m *Metrics) ObserveResolve(outcome string, elapsed time.Duration) {
	m.resolvesTotal.WithLabelValues(outcome).Inc()
	m.resolveDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func newMetrics() *Metrics {
	return &Metrics{
		resolvesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dispatch",
				Subsystem: "registry",
				Name:      "resolves_total",
				Help: "Total number of " +
					"resolution attempts",
			},
			[]string{"outcome"},
		),
		resolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dispatch",
				Subsystem: "registry",
				Name: "resolve_duration" +
					"_seconds",
				Help: "Duration of endpoint " +
					"resolution",
				Buckets: []float64{
					.000001, .00001, .0001,
					.0005, .001, .005, .01,
				},
			},
			[]string{"outcome"},
		),
	}
}
