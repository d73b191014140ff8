package ranking

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricWeightReloadTotal         = "weight_reload_total"
	MetricWeightReloadErrors        = "weight_reload_errors_total"
	MetricWeightLastReloadTimestamp = "weight_last_reload_timestamp"
)

// Metrics contains Prometheus metrics for weight calibration reloads.
// All operations are thread-safe.
type Metrics struct {
	reloadTotal         prometheus.Counter
	reloadErrors        prometheus.Counter
	lastReloadTimestamp prometheus.Gauge
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		reloadTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricWeightReloadTotal,
			Help: "Total number of successful weight calibration reloads",
		}),
		reloadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricWeightReloadErrors,
			Help: "Total number of failed weight calibration reloads",
		}),
		lastReloadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricWeightLastReloadTimestamp,
			Help: "Unix timestamp of the last successful weight reload",
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
		m.reloadTotal,
		m.reloadErrors,
		m.lastReloadTimestamp,
	}
}

// ObserveReload records a successful calibration reload.
func (m *Metrics) ObserveReload() {
	m.reloadTotal.Inc()
	m.lastReloadTimestamp.Set(float64(time.Now().Unix()))
}

// IncReloadFailure records a failed calibration reload.
func (m *Metrics) IncReloadFailure() {
	m.reloadErrors.Inc()
}
