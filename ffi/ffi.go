// Package ffi projects blob.Store onto a uint64-keyed, offset/length
// surface matching the shape a cgo/cxx binding would need: no Key type,
// no Range type, just integers and byte slices. It is a thin wrapper
// only — no cgo or cxx bridge is built here, but every method here has
// a direct counterpart in the original implementation's ffi/*.rs files,
// so a future FFI boundary has a natural home to bind against.
package ffi

import (
	"github.com/marmos91/blobstore/backend/fs"
	"github.com/marmos91/blobstore/backend/mmap"
	"github.com/marmos91/blobstore/backend/sqlite"
	"github.com/marmos91/blobstore/blob"
	"github.com/marmos91/blobstore/cache"
)

// FileStore wraps backend/fs with a uint64-keyed surface.
type FileStore struct {
	store *fs.Store
}

// NewFileStore opens a FileStore rooted at path.
func NewFileStore(path string) (*FileStore, error) {
	store, err := fs.New(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{store: store}, nil
}

func (s *FileStore) Contains(key uint64) (bool, error) { return s.store.Contains(blob.KeyFromUint64(key)) }
func (s *FileStore) BlobSize(key uint64) (uint64, error) {
	m, err := s.store.Meta(blob.KeyFromUint64(key))
	return m.Size, err
}
func (s *FileStore) Create(key uint64, value []byte) error {
	return s.store.Put(blob.KeyFromUint64(key), value, blob.Create())
}
func (s *FileStore) Put(key uint64, value []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(value))}
	return s.store.Put(blob.KeyFromUint64(key), value, blob.Replace(r))
}
func (s *FileStore) PutOrCreate(key uint64, value []byte) error {
	return s.store.Put(blob.KeyFromUint64(key), value, blob.ReplaceOrCreate())
}
func (s *FileStore) GetAll(key uint64, buf []byte) error {
	return s.store.Get(blob.KeyFromUint64(key), buf, blob.All())
}
func (s *FileStore) GetOffset(key uint64, buf []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(buf))}
	return s.store.Get(blob.KeyFromUint64(key), buf, blob.InRange(r))
}
func (s *FileStore) Delete(key uint64) error {
	return s.store.Delete(blob.KeyFromUint64(key), blob.Discard())
}
func (s *FileStore) Close() error { return s.store.Close() }

// MmapStore wraps backend/mmap with a uint64-keyed surface.
type MmapStore struct {
	store *mmap.Store
}

// NewMmapStore opens an MmapStore rooted at path with the default
// mapping cache size.
func NewMmapStore(path string) (*MmapStore, error) {
	store, err := mmap.New(path)
	if err != nil {
		return nil, err
	}
	return &MmapStore{store: store}, nil
}

func (s *MmapStore) Contains(key uint64) (bool, error) { return s.store.Contains(blob.KeyFromUint64(key)) }
func (s *MmapStore) BlobSize(key uint64) (uint64, error) {
	m, err := s.store.Meta(blob.KeyFromUint64(key))
	return m.Size, err
}
func (s *MmapStore) Create(key uint64, value []byte) error {
	return s.store.Put(blob.KeyFromUint64(key), value, blob.Create())
}
func (s *MmapStore) Put(key uint64, value []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(value))}
	return s.store.Put(blob.KeyFromUint64(key), value, blob.Replace(r))
}
func (s *MmapStore) GetAll(key uint64, buf []byte) error {
	return s.store.Get(blob.KeyFromUint64(key), buf, blob.All())
}
func (s *MmapStore) GetOffset(key uint64, buf []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(buf))}
	return s.store.Get(blob.KeyFromUint64(key), buf, blob.InRange(r))
}
func (s *MmapStore) Delete(key uint64) error {
	return s.store.Delete(blob.KeyFromUint64(key), blob.Discard())
}
func (s *MmapStore) Close() error { return s.store.Close() }

// SQLiteStore wraps backend/sqlite with a uint64-keyed surface.
type SQLiteStore struct {
	store *sqlite.Store
}

// NewSQLiteStore opens a SQLiteStore rooted at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	store, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{store: store}, nil
}

func (s *SQLiteStore) Contains(key uint64) (bool, error) { return s.store.Contains(blob.KeyFromUint64(key)) }
func (s *SQLiteStore) BlobSize(key uint64) (uint64, error) {
	m, err := s.store.Meta(blob.KeyFromUint64(key))
	return m.Size, err
}
func (s *SQLiteStore) Create(key uint64, value []byte) error {
	return s.store.Put(blob.KeyFromUint64(key), value, blob.Create())
}
func (s *SQLiteStore) Put(key uint64, value []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(value))}
	return s.store.Put(blob.KeyFromUint64(key), value, blob.Replace(r))
}
func (s *SQLiteStore) GetAll(key uint64, buf []byte) error {
	return s.store.Get(blob.KeyFromUint64(key), buf, blob.All())
}
func (s *SQLiteStore) GetOffset(key uint64, buf []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(buf))}
	return s.store.Get(blob.KeyFromUint64(key), buf, blob.InRange(r))
}
func (s *SQLiteStore) Delete(key uint64) error {
	return s.store.Delete(blob.KeyFromUint64(key), blob.Discard())
}
func (s *SQLiteStore) Close() error { return s.store.Close() }

// CachedStore wraps a cache.MemoryCache with a uint64-keyed surface,
// including the bypass variants that skip the cache entirely.
type CachedStore struct {
	cache *cache.MemoryCache
}

// NewCachedStore wraps store in a write-back cache of the given byte
// budget and projects it onto the uint64-keyed surface.
func NewCachedStore(store blob.Store, capacityBytes int64) *CachedStore {
	return &CachedStore{cache: cache.New(store, capacityBytes, nil)}
}

func (s *CachedStore) Contains(key uint64) (bool, error) { return s.cache.Contains(blob.KeyFromUint64(key)) }
func (s *CachedStore) BlobSize(key uint64) (uint64, error) {
	m, err := s.cache.Meta(blob.KeyFromUint64(key))
	return m.Size, err
}
func (s *CachedStore) Create(key uint64, value []byte) error {
	return s.cache.Put(blob.KeyFromUint64(key), value, blob.Create())
}
func (s *CachedStore) BypassCreate(key uint64, value []byte) error {
	return s.cache.BypassPut(blob.KeyFromUint64(key), value, blob.Create())
}
func (s *CachedStore) Put(key uint64, value []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(value))}
	return s.cache.Put(blob.KeyFromUint64(key), value, blob.Replace(r))
}
func (s *CachedStore) BypassPut(key uint64, value []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(value))}
	return s.cache.BypassPut(blob.KeyFromUint64(key), value, blob.Replace(r))
}
func (s *CachedStore) PutOrCreate(key uint64, value []byte) error {
	return s.cache.Put(blob.KeyFromUint64(key), value, blob.ReplaceOrCreate())
}
func (s *CachedStore) BypassPutOrCreate(key uint64, value []byte) error {
	return s.cache.BypassPut(blob.KeyFromUint64(key), value, blob.ReplaceOrCreate())
}
func (s *CachedStore) GetAll(key uint64, buf []byte) error {
	return s.cache.Get(blob.KeyFromUint64(key), buf, blob.All())
}
func (s *CachedStore) BypassGetAll(key uint64, buf []byte) error {
	return s.cache.BypassGet(blob.KeyFromUint64(key), buf, blob.All())
}
func (s *CachedStore) GetOffset(key uint64, buf []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(buf))}
	return s.cache.Get(blob.KeyFromUint64(key), buf, blob.InRange(r))
}
func (s *CachedStore) BypassGetOffset(key uint64, buf []byte, offset uint64) error {
	r := blob.Range{Start: int64(offset), End: int64(offset) + int64(len(buf))}
	return s.cache.BypassGet(blob.KeyFromUint64(key), buf, blob.InRange(r))
}
func (s *CachedStore) Delete(key uint64) error {
	return s.cache.Delete(blob.KeyFromUint64(key), blob.Discard())
}
func (s *CachedStore) Close() error { return s.cache.Close() }
