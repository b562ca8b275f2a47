package cache

import (
	"sync"
	"testing"

	"github.com/marmos91/blobstore/blob"
)

// fakeStore is a minimal in-memory blob.Store used to exercise the
// cache's write-back behaviour without touching disk.
type fakeStore struct {
	mu   sync.Mutex
	data map[blob.Key][]byte
	puts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[blob.Key][]byte)}
}

func (f *fakeStore) Contains(key blob.Key) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeStore) Meta(key blob.Key) (blob.Meta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return blob.Meta{}, blob.NotFound(key, "blob not found")
	}
	return blob.Meta{Size: uint64(len(v))}, nil
}

func (f *fakeStore) Put(key blob.Key, value []byte, opt blob.PutOpt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	switch opt.Kind {
	case blob.PutCreate:
		if _, ok := f.data[key]; ok {
			return blob.AlreadyExists(key, "blob already exists")
		}
		f.data[key] = append([]byte(nil), value...)
	case blob.PutReplaceOrCreate:
		f.data[key] = append([]byte(nil), value...)
	case blob.PutReplace:
		existing, ok := f.data[key]
		if !ok {
			return blob.NotFound(key, "blob not found")
		}
		if !blob.Whole(uint64(len(existing))).Contains(opt.Range) || opt.Range.Len() != int64(len(value)) {
			return blob.RangeErr(key, "range mismatch")
		}
		copy(existing[opt.Range.Start:opt.Range.End], value)
	}
	return nil
}

func (f *fakeStore) Get(key blob.Key, buf []byte, opt blob.GetOpt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return blob.NotFound(key, "blob not found")
	}
	switch opt.Kind {
	case blob.GetAll:
		if len(buf) != len(v) {
			return blob.RangeErr(key, "buffer mismatch")
		}
		copy(buf, v)
	case blob.GetRange:
		if !blob.Whole(uint64(len(v))).Contains(opt.Range) || opt.Range.Len() != int64(len(buf)) {
			return blob.RangeErr(key, "range mismatch")
		}
		copy(buf, v[opt.Range.Start:opt.Range.End])
	}
	return nil
}

func (f *fakeStore) Delete(key blob.Key, opt blob.DeleteOpt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return blob.NotFound(key, "blob not found")
	}
	delete(f.data, key)
	return nil
}

func (f *fakeStore) Close() error { return nil }

var _ blob.Store = (*fakeStore)(nil)

func TestCreateWritesThroughImmediately(t *testing.T) {
	store := newFakeStore()
	c := New(store, 1<<20, nil)
	key := blob.KeyFromUint64(1)

	if err := c.Put(key, []byte("hello"), blob.Create()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	store.mu.Lock()
	_, onBackend := store.data[key]
	store.mu.Unlock()
	if !onBackend {
		t.Error("Create did not write through to the backend immediately")
	}
}

func TestReplaceIsNotWrittenThroughUntilEviction(t *testing.T) {
	store := newFakeStore()
	c := New(store, 1<<20, nil)
	key := blob.KeyFromUint64(2)

	if err := c.Put(key, []byte("aaaaaaaaaa"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.Put(key, []byte("BBB"), blob.Replace(blob.Range{Start: 2, End: 5})); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	store.mu.Lock()
	backendData := string(store.data[key])
	store.mu.Unlock()
	if backendData != "aaaaaaaaaa" {
		t.Errorf("backend data = %q, want unchanged %q (replace should not write through)", backendData, "aaaaaaaaaa")
	}

	buf := make([]byte, 10)
	if err := c.Get(key, buf, blob.All()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got, want := string(buf), "aaBBBaaaaa"; got != want {
		t.Errorf("Get = %q, want %q", got, want)
	}
}

func TestEvictionFlushesDirtyReplace(t *testing.T) {
	store := newFakeStore()
	// Capacity of exactly one small blob: the second Create forces the
	// first key's resident copy to be evicted and flushed.
	c := New(store, 10, nil)
	keyA := blob.KeyFromUint64(3)
	keyB := blob.KeyFromUint64(4)

	if err := c.Put(keyA, []byte("aaaaaaaaaa"), blob.Create()); err != nil {
		t.Fatalf("Create A: %v", err)
	}
	if err := c.Put(keyA, []byte("ZZZ"), blob.Replace(blob.Range{Start: 0, End: 3})); err != nil {
		t.Fatalf("Replace A: %v", err)
	}
	if err := c.Put(keyB, []byte("bbbbbbbbbb"), blob.Create()); err != nil {
		t.Fatalf("Create B: %v", err)
	}

	store.mu.Lock()
	backendData := string(store.data[keyA])
	store.mu.Unlock()
	if got, want := backendData, "ZZZaaaaaaa"; got != want {
		t.Errorf("backend data for A after eviction = %q, want %q", got, want)
	}
}

func TestGetOnRangeMissInstallsOnlyTheRange(t *testing.T) {
	store := newFakeStore()
	c := New(store, 1<<20, nil)
	key := blob.KeyFromUint64(5)

	if err := store.Put(key, []byte("0123456789"), blob.Create()); err != nil {
		t.Fatalf("seed backend: %v", err)
	}

	buf := make([]byte, 4)
	if err := c.Get(key, buf, blob.InRange(blob.Range{Start: 2, End: 6})); err != nil {
		t.Fatalf("Get range: %v", err)
	}
	if string(buf) != "2345" {
		t.Fatalf("Get range = %q, want %q", buf, "2345")
	}

	m, err := c.Meta(key)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if m.Size != 4 {
		t.Errorf("Meta.Size after range-get miss = %d, want 4 (only the fetched range is resident)", m.Size)
	}
}

func TestCreateDuplicateFailsEvenWhenOnlyResident(t *testing.T) {
	store := newFakeStore()
	c := New(store, 1<<20, nil)
	key := blob.KeyFromUint64(6)

	if err := c.Put(key, []byte("x"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Drop the backend copy so the key is only resident in the cache.
	store.mu.Lock()
	delete(store.data, key)
	store.mu.Unlock()

	err := c.Put(key, []byte("y"), blob.Create())
	if !blob.Is(err, blob.KindAlreadyExists) {
		t.Errorf("second Create error = %v, want KindAlreadyExists", err)
	}
}

func TestDeleteRemovesFromCacheAndBackend(t *testing.T) {
	store := newFakeStore()
	c := New(store, 1<<20, nil)
	key := blob.KeyFromUint64(7)

	if err := c.Put(key, []byte("gone soon"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.Delete(key, blob.Discard()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	ok, err := c.Contains(key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("Contains = true after Delete, want false")
	}
	onBackend, err := store.Contains(key)
	if err != nil {
		t.Fatalf("backend Contains: %v", err)
	}
	if onBackend {
		t.Error("backend Contains = true after Delete, want false")
	}
}

func TestCloseFlushesAllResidentEntries(t *testing.T) {
	store := newFakeStore()
	c := New(store, 1<<20, nil)
	key := blob.KeyFromUint64(8)

	if err := c.Put(key, []byte("aaaaaaaaaa"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.Put(key, []byte("ZZZ"), blob.Replace(blob.Range{Start: 0, End: 3})); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store.mu.Lock()
	backendData := string(store.data[key])
	store.mu.Unlock()
	if got, want := backendData, "ZZZaaaaaaa"; got != want {
		t.Errorf("backend data after Close = %q, want %q", got, want)
	}
}

func TestBypassSkipsCache(t *testing.T) {
	store := newFakeStore()
	c := New(store, 1<<20, nil)
	key := blob.KeyFromUint64(9)

	if err := c.BypassPut(key, []byte("straight to disk"), blob.Create()); err != nil {
		t.Fatalf("BypassPut: %v", err)
	}

	present, err := c.Contains(key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !present {
		t.Error("Contains = false after BypassPut, want true (Contains falls through to the backend)")
	}

	c.lruMu.Lock()
	tracked := c.containsLocked(key)
	c.lruMu.Unlock()
	c.residentMu.RLock()
	_, resident := c.resident[key]
	c.residentMu.RUnlock()
	if tracked || resident {
		t.Error("key is cached after BypassPut, want not cached (bypass must not populate the cache)")
	}

	buf := make([]byte, len("straight to disk"))
	if err := c.BypassGet(key, buf, blob.All()); err != nil {
		t.Fatalf("BypassGet: %v", err)
	}
	if string(buf) != "straight to disk" {
		t.Errorf("BypassGet = %q, want %q", buf, "straight to disk")
	}
}
