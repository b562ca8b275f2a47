// Package cache implements a write-back memory cache in front of a
// blob.Store. Puts and range-gets are served from resident, in-memory
// copies of recently touched blobs; eviction from a byte-budget-bounded
// LRU flushes a resident copy back to the underlying store before it is
// dropped. An I/O failure during that flush aborts the operation that
// triggered the eviction, carrying the backend's error.
package cache

import (
	"container/list"
	"sync"

	"github.com/marmos91/blobstore/blob"
	"github.com/marmos91/blobstore/internal/logger"
)

// residentEntry holds one cached blob's bytes, guarded by its own mutex
// so operations on different keys never contend on a shared lock. The
// lru mutex is always dropped before a residentEntry's own mutex is
// taken, mirroring the Rust original's "get mutable ref, then drop the
// lru lock" sequencing in cache.rs.
type residentEntry struct {
	mu   sync.Mutex
	data []byte
}

// MemoryCache wraps a blob.Store with a byte-budget-bounded write-back
// cache. It implements blob.Store itself, so it can be used anywhere a
// plain backend would be.
type MemoryCache struct {
	store blob.Store

	lruMu    sync.Mutex
	lru      *list.List // list of *lruNode, front = most recently used
	lruIndex map[blob.Key]*list.Element
	size     int64
	capacity int64

	residentMu sync.RWMutex
	resident   map[blob.Key]*residentEntry

	metrics Metrics
}

type lruNode struct {
	key  blob.Key
	size int64
}

// New wraps store in a write-back cache with the given byte budget.
// metrics may be nil, in which case cache statistics are not reported
// anywhere (NoopMetrics is used internally).
func New(store blob.Store, capacityBytes int64, metrics Metrics) *MemoryCache {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &MemoryCache{
		store:    store,
		lru:      list.New(),
		lruIndex: make(map[blob.Key]*list.Element),
		capacity: capacityBytes,
		resident: make(map[blob.Key]*residentEntry),
		metrics:  metrics,
	}
}

// touchLocked records key as size bytes and most-recently-used, evicting as
// many least-recently-used entries as necessary to stay within capacity.
// It returns the keys evicted, which the caller must flush via
// flushEvicted before they're gone for good. Must be called with lruMu
// held.
func (c *MemoryCache) touchLocked(key blob.Key, size int64) []blob.Key {
	if el, ok := c.lruIndex[key]; ok {
		node := el.Value.(*lruNode)
		c.size += size - node.size
		node.size = size
		c.lru.MoveToFront(el)
	} else {
		node := &lruNode{key: key, size: size}
		el := c.lru.PushFront(node)
		c.lruIndex[key] = el
		c.size += size
	}

	var evicted []blob.Key
	for c.size > c.capacity {
		back := c.lru.Back()
		if back == nil {
			break
		}
		node := back.Value.(*lruNode)
		if node.key == key {
			// The entry we just inserted is itself larger than the
			// whole budget; nothing else can be evicted to make room.
			break
		}
		c.lru.Remove(back)
		delete(c.lruIndex, node.key)
		c.size -= node.size
		evicted = append(evicted, node.key)
	}
	return evicted
}

// containsLocked reports whether key is currently tracked by the LRU,
// without promoting its recency (unlike the Rust original's contains,
// which calls the inner LRU's get and does promote). Contains and the
// Create path of Put both use it, so neither promotes.
func (c *MemoryCache) containsLocked(key blob.Key) bool {
	_, ok := c.lruIndex[key]
	return ok
}

// dropLocked removes key from the LRU bookkeeping without flushing it.
// Must be called with lruMu held.
func (c *MemoryCache) dropLocked(key blob.Key) {
	if el, ok := c.lruIndex[key]; ok {
		node := el.Value.(*lruNode)
		c.lru.Remove(el)
		delete(c.lruIndex, key)
		c.size -= node.size
	}
}

// flushEvicted writes each evicted key's resident bytes back to the
// underlying store and drops them from the resident map. Any I/O error
// aborts immediately, leaving the failed key and the remaining evicted
// keys resident but no longer tracked by the LRU. Get and Replace keep
// serving such a key from memory and Close does not flush it (Close walks
// only the LRU); only a later ReplaceOrCreate of the key tracks it again.
// Otherwise its resident bytes are lost when the process exits — the same
// fate the Rust original accepts for a failed flush_evict.
func (c *MemoryCache) flushEvicted(evicted []blob.Key) error {
	for _, key := range evicted {
		c.residentMu.RLock()
		entry, ok := c.resident[key]
		c.residentMu.RUnlock()
		if !ok {
			continue
		}

		entry.mu.Lock()
		data := entry.data
		entry.mu.Unlock()

		if err := c.store.Put(key, data, blob.ReplaceOrCreate()); err != nil {
			logger.Error("flush on eviction failed", logger.Key(key[:]), logger.Err(err))
			return err
		}

		c.residentMu.Lock()
		delete(c.resident, key)
		c.residentMu.Unlock()

		c.metrics.RecordEviction(key, int64(len(data)))
		logger.Debug("evicted resident entry", logger.Key(key[:]), logger.Size(uint64(len(data))))
	}
	return nil
}

// install records value as key's resident bytes, evicting and flushing
// as necessary to respect the byte budget.
func (c *MemoryCache) install(key blob.Key, value []byte) error {
	c.lruMu.Lock()
	evicted := c.touchLocked(key, int64(len(value)))
	c.lruMu.Unlock()

	if err := c.flushEvicted(evicted); err != nil {
		return err
	}

	entry := &residentEntry{data: value}
	c.residentMu.Lock()
	c.resident[key] = entry
	c.residentMu.Unlock()

	c.metrics.RecordResidentBytes(c.residentBytes())
	return nil
}

func (c *MemoryCache) residentBytes() int64 {
	c.lruMu.Lock()
	defer c.lruMu.Unlock()
	return c.size
}

// Contains implements blob.Store. A key resident in the cache is
// reported present without consulting the backend.
func (c *MemoryCache) Contains(key blob.Key) (bool, error) {
	c.lruMu.Lock()
	resident := c.containsLocked(key)
	c.lruMu.Unlock()
	if resident {
		return true, nil
	}
	return c.store.Contains(key)
}

// Meta implements blob.Store. For a resident key, Meta reports the size
// of the resident copy, which may differ from the backend's true blob
// size if only a range of the blob was ever fetched into the cache (see
// Get).
func (c *MemoryCache) Meta(key blob.Key) (blob.Meta, error) {
	c.residentMu.RLock()
	entry, ok := c.resident[key]
	c.residentMu.RUnlock()
	if ok {
		entry.mu.Lock()
		size := uint64(len(entry.data))
		entry.mu.Unlock()
		return blob.Meta{Size: size}, nil
	}
	return c.store.Meta(key)
}

var _ blob.Store = (*MemoryCache)(nil)
