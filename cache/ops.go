package cache

import (
	"errors"

	"github.com/marmos91/blobstore/blob"
)

// Put implements blob.Store.
//
//   - Create requires the key to be absent from both the cache and the
//     backend; the write lands on the backend immediately (so the blob
//     exists on disk right away) as well as in the cache.
//   - ReplaceOrCreate behaves the same way: it is always written through
//     to the backend synchronously.
//   - Replace patches the resident copy in place and is NOT written
//     through; the new bytes reach the backend only when the entry is
//     later evicted or the cache is closed. If the key isn't resident
//     yet, Replace first pulls the whole blob in via Get.
func (c *MemoryCache) Put(key blob.Key, value []byte, opt blob.PutOpt) error {
	switch opt.Kind {
	case blob.PutCreate:
		c.lruMu.Lock()
		resident := c.containsLocked(key)
		c.lruMu.Unlock()
		if resident {
			return blob.AlreadyExists(key, "blob already exists")
		}
		exists, err := c.store.Contains(key)
		if err != nil {
			return err
		}
		if exists {
			return blob.AlreadyExists(key, "blob already exists")
		}
		if err := c.store.Put(key, value, opt); err != nil {
			return err
		}
		owned := append([]byte(nil), value...)
		return c.install(key, owned)

	case blob.PutReplaceOrCreate:
		if err := c.store.Put(key, value, opt); err != nil {
			return err
		}
		owned := append([]byte(nil), value...)
		return c.install(key, owned)

	case blob.PutReplace:
		return c.replace(key, value, opt.Range)

	default:
		return blob.IOErrorNoKey("unknown put kind", errors.New("invalid PutOpt"))
	}
}

func (c *MemoryCache) replace(key blob.Key, value []byte, r blob.Range) error {
	c.residentMu.RLock()
	entry, ok := c.resident[key]
	c.residentMu.RUnlock()

	if !ok {
		data, err := blob.GetOwned(c.store, key, blob.All())
		if err != nil {
			return err
		}
		if err := c.install(key, data); err != nil {
			return err
		}
		c.residentMu.RLock()
		entry = c.resident[key]
		c.residentMu.RUnlock()
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !blob.Whole(uint64(len(entry.data))).Contains(r) || r.Len() != int64(len(value)) {
		return blob.RangeErrf(key, "range %d..%d does not fit resident blob of size %d or value of length %d",
			r.Start, r.End, len(entry.data), len(value))
	}
	copy(entry.data[r.Start:r.End], value)
	return nil
}

// Get implements blob.Store. A miss pulls the requested range from the
// backend and installs exactly those bytes as the resident copy — so a
// range-get miss does not warm the whole blob into the cache, only the
// range actually requested.
func (c *MemoryCache) Get(key blob.Key, buf []byte, opt blob.GetOpt) error {
	c.residentMu.RLock()
	entry, ok := c.resident[key]
	c.residentMu.RUnlock()

	if !ok {
		data, err := blob.GetOwned(c.store, key, opt)
		if err != nil {
			return err
		}
		if err := c.install(key, data); err != nil {
			return err
		}
		c.residentMu.RLock()
		entry = c.resident[key]
		c.residentMu.RUnlock()
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	switch opt.Kind {
	case blob.GetAll:
		if len(buf) != len(entry.data) {
			return blob.RangeErrf(key, "buffer length %d does not match resident blob size %d", len(buf), len(entry.data))
		}
		copy(buf, entry.data)
	case blob.GetRange:
		if !blob.Whole(uint64(len(entry.data))).Contains(opt.Range) || opt.Range.Len() != int64(len(buf)) {
			return blob.RangeErrf(key, "range %d..%d does not fit resident blob of size %d or buffer of length %d",
				opt.Range.Start, opt.Range.End, len(entry.data), len(buf))
		}
		copy(buf, entry.data[opt.Range.Start:opt.Range.End])
	default:
		return blob.IOErrorNoKey("unknown get kind", errors.New("invalid GetOpt"))
	}
	return nil
}

// Delete implements blob.Store. The key is dropped from the cache (if
// resident) and then from the backend; a NotFound from the backend
// surfaces to the caller even if the key was resident.
func (c *MemoryCache) Delete(key blob.Key, opt blob.DeleteOpt) error {
	switch opt.Kind {
	case blob.DeleteDiscard:
		c.lruMu.Lock()
		c.dropLocked(key)
		c.lruMu.Unlock()

		c.residentMu.Lock()
		delete(c.resident, key)
		c.residentMu.Unlock()

		return c.store.Delete(key, opt)
	case blob.DeleteInterest:
		return blob.IOErrorNoKey("partial-interest delete is not implemented", errors.New("DeleteInterest"))
	default:
		return blob.IOErrorNoKey("unknown delete kind", errors.New("invalid DeleteOpt"))
	}
}

// BypassPut writes directly to the underlying store, skipping the cache
// entirely — neither consulting nor updating resident copies or the LRU.
func (c *MemoryCache) BypassPut(key blob.Key, value []byte, opt blob.PutOpt) error {
	return c.store.Put(key, value, opt)
}

// BypassGet reads directly from the underlying store, skipping the cache
// entirely.
func (c *MemoryCache) BypassGet(key blob.Key, buf []byte, opt blob.GetOpt) error {
	return c.store.Get(key, buf, opt)
}

// Close flushes every resident entry back to the underlying store, then
// closes it. A flush failure for any single entry is fatal: the cache
// cannot silently drop dirty bytes, so Close aborts at the first error
// and leaves the remaining entries tracked exactly as before, so a
// second call to Close only has to retry what didn't flush.
func (c *MemoryCache) Close() error {
	for {
		c.lruMu.Lock()
		back := c.lru.Back()
		if back == nil {
			c.lruMu.Unlock()
			break
		}
		key := back.Value.(*lruNode).key
		c.lruMu.Unlock()

		if err := c.flushEvicted([]blob.Key{key}); err != nil {
			return err
		}

		c.lruMu.Lock()
		c.dropLocked(key)
		c.lruMu.Unlock()
	}
	return c.store.Close()
}
