package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/marmos91/blobstore/blob"
)

func TestPrometheusMetricsRecordsResidentBytes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg, "blobstore", "cache")
	if err != nil {
		t.Fatalf("NewPrometheusMetrics: %v", err)
	}

	m.RecordResidentBytes(4096)

	if got, want := testutil.ToFloat64(m.residentBytes), float64(4096); got != want {
		t.Errorf("resident_bytes = %v, want %v", got, want)
	}
}

func TestPrometheusMetricsRecordsEviction(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg, "blobstore", "cache")
	if err != nil {
		t.Fatalf("NewPrometheusMetrics: %v", err)
	}

	key := blob.KeyFromUint64(1)
	m.RecordEviction(key, 128)
	m.RecordEviction(key, 256)

	if got, want := testutil.ToFloat64(m.evictions), float64(2); got != want {
		t.Errorf("evictions_total = %v, want %v", got, want)
	}
	if got, want := testutil.ToFloat64(m.evictedBytes), float64(384); got != want {
		t.Errorf("evicted_bytes_total = %v, want %v", got, want)
	}
}

func TestPrometheusMetricsDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetrics(reg, "blobstore", "cache"); err != nil {
		t.Fatalf("NewPrometheusMetrics: %v", err)
	}
	if _, err := NewPrometheusMetrics(reg, "blobstore", "cache"); err == nil {
		t.Error("expected an error registering the same collectors against the same registry twice")
	}
}

func TestNewWithPrometheusMetrics(t *testing.T) {
	store := newFakeStore()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg, "blobstore", "cache")
	if err != nil {
		t.Fatalf("NewPrometheusMetrics: %v", err)
	}

	c := New(store, 16, m)
	key := blob.KeyFromUint64(1)
	if err := c.Put(key, []byte("hello world!"), blob.Create()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(key, []byte("x"), blob.Replace(blob.Range{Start: 0, End: 1})); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := c.Put(blob.KeyFromUint64(2), []byte("this is a much bigger second blob"), blob.Create()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if got := testutil.ToFloat64(m.evictions); got == 0 {
		t.Error("expected at least one eviction to have been recorded once capacity was exceeded")
	}
}
