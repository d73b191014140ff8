package match

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankRequestsTotal    = "rank_requests_total"
	MetricRankDuration         = "rank_duration_seconds"
	MetricRankDegradedTotal    = "rank_degraded_total"
	MetricRankConflictExcluded = "rank_conflict_excluded_total"
	MetricRankCandidates       = "rank_candidates"
)

// Status label values for rank requests.
const (
	StatusOK           = "ok"
	StatusEmpty        = "empty"
	StatusInvalidInput = "invalid_input"
	StatusCancelled    = "cancelled"
)

// Metrics contains Prometheus metrics for ranking requests.
// All operations are thread-safe.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	duration         prometheus.Histogram
	degradedTotal    prometheus.Counter
	conflictExcluded prometheus.Counter
	candidates       prometheus.Histogram
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankRequestsTotal,
				Help: "Total number of ranking requests by preset and status",
			},
			[]string{"preset", "status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRankDuration,
			Help:    "Histogram of ranking request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		degradedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRankDegradedTotal,
			Help: "Total number of ranking requests served in degraded mode",
		}),
		conflictExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRankConflictExcluded,
			Help: "Total number of candidates excluded by conflict-of-interest rules",
		}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRankCandidates,
			Help:    "Histogram of eligible candidate counts per ranking request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all metric collectors for custom registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requestsTotal,
		m.duration,
		m.degradedTotal,
		m.conflictExcluded,
		m.candidates,
	}
}

// ObserveRequest records one completed ranking request.
func (m *Metrics) ObserveRequest(preset, status string, seconds float64) {
	m.requestsTotal.WithLabelValues(preset, status).Inc()
	m.duration.Observe(seconds)
}

// IncDegraded records a ranking request served in degraded mode.
func (m *Metrics) IncDegraded() {
	m.degradedTotal.Inc()
}

// AddConflictExcluded records candidates removed by the conflict filter.
func (m *Metrics) AddConflictExcluded(n int) {
	if n > 0 {
		m.conflictExcluded.Add(float64(n))
	}
}

// ObserveCandidates records the eligible candidate count for a request.
func (m *Metrics) ObserveCandidates(n int) {
	m.candidates.Observe(float64(n))
}
