package pool

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "avalert"
	subsystem = "pool"
)

// Metrics holds all pool-level Prometheus metrics.
type Metrics struct {
	RequestsTotal          *prometheus.CounterVec
	RetriesTotal           *prometheus.CounterVec
	NoHostsTotal           prometheus.Counter
	RequestDurationSeconds *prometheus.HistogramVec
	HostHealthy            *prometheus.GaugeVec
	PingDurationSeconds    *prometheus.HistogramVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// NewMetrics creates a Metrics instance with all metrics registered via
// promauto (default global registry).
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of dispatch attempts by outcome",
			},
			[]string{"host", "method", "outcome"},
		),
		RetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "retries_total",
				Help:      "Total number of failover retries",
			},
			[]string{"host"},
		),
		NoHostsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "no_hosts_total",
				Help:      "Dispatches that found no eligible host",
			},
		),
		RequestDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of dispatch attempts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"host", "method"},
		),
		HostHealthy: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "host_healthy",
				Help:      "Host health state (1=healthy, 0=unhealthy)",
			},
			[]string{"host"},
		),
		PingDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ping_duration_seconds",
				Help:      "Round-trip time of health probes",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"host", "online"},
		),
	}
}

// GetMetrics returns the singleton Metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = NewMetrics()
	})
	return metricsInstance
}

// MustRegister registers all metrics on the given registry. Used by
// tests that gather from a private registry.
func (m *Metrics) MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		m.RequestsTotal,
		m.RetriesTotal,
		m.NoHostsTotal,
		m.RequestDurationSeconds,
		m.HostHealthy,
		m.PingDurationSeconds,
	)
}
