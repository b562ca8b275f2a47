package cache

import "github.com/marmos91/blobstore/blob"

// Metrics provides observability for write-back cache operations.
// Implementations can report to Prometheus, StatsD, in-memory counters
// for testing, or anywhere else; passing nil to New installs a no-op
// implementation so instrumentation stays entirely optional.
type Metrics interface {
	// RecordResidentBytes records the cache's current total resident
	// size in bytes, after a Put/Get installs or updates an entry.
	RecordResidentBytes(bytes int64)

	// RecordEviction records that key's resident copy of size bytes was
	// flushed back to the backend and dropped from the cache.
	RecordEviction(key blob.Key, bytes int64)
}

// NoopMetrics discards every observation. It is the default used by New
// when no Metrics implementation is supplied.
type NoopMetrics struct{}

// RecordResidentBytes implements Metrics.
func (NoopMetrics) RecordResidentBytes(int64) {}

// RecordEviction implements Metrics.
func (NoopMetrics) RecordEviction(blob.Key, int64) {}

var _ Metrics = NoopMetrics{}
