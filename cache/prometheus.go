package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/blobstore/blob"
)

// PrometheusMetrics is a Metrics implementation that registers a gauge
// for resident bytes and a counter for evictions against a
// caller-supplied registry. It starts no HTTP server itself; exposing
// the registry over /metrics is the caller's responsibility.
type PrometheusMetrics struct {
	residentBytes prometheus.Gauge
	evictions     prometheus.Counter
	evictedBytes  prometheus.Counter
}

// NewPrometheusMetrics registers its collectors against reg under the
// given namespace/subsystem and returns a ready-to-use Metrics.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace, subsystem string) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		residentBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "resident_bytes",
			Help:      "Current total size in bytes of blobs resident in the write-back cache.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evictions_total",
			Help:      "Total number of resident blobs evicted and flushed to the backend.",
		}),
		evictedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evicted_bytes_total",
			Help:      "Total bytes flushed to the backend on eviction.",
		}),
	}

	for _, c := range []prometheus.Collector{m.residentBytes, m.evictions, m.evictedBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordResidentBytes implements Metrics.
func (m *PrometheusMetrics) RecordResidentBytes(bytes int64) {
	m.residentBytes.Set(float64(bytes))
}

// RecordEviction implements Metrics.
func (m *PrometheusMetrics) RecordEviction(_ blob.Key, bytes int64) {
	m.evictions.Inc()
	m.evictedBytes.Add(float64(bytes))
}

var _ Metrics = (*PrometheusMetrics)(nil)
