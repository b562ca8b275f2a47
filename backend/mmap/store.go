// Package mmap is a memory-mapped-file blob backend: each key is backed
// by a regular file on disk that, while resident, is mapped directly
// into the process's address space. A bounded LRU caps how many
// mappings are held open at once; evicting a mapping unmaps and closes
// its file, which is also when the kernel flushes outstanding writes
// back to disk.
//
// Unlike backend/fs, this backend is not safe for unrestricted
// concurrent use: a Store serializes its own operations internally with
// a mutex, but callers must not assume independent keys make progress in
// parallel the way they do with backend/fs.
package mmap

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sys/unix"

	"github.com/marmos91/blobstore/blob"
	"github.com/marmos91/blobstore/internal/pathhash"
)

// DefaultCacheSize is the default number of live mappings kept resident
// at once.
const DefaultCacheSize = 64

// DirMode is the permission mode used for directories created under root.
const DirMode = 0o755

// FileMode is the permission mode used for blob files.
const FileMode = 0o644

type mapping struct {
	file *os.File
	data []byte
}

func (m *mapping) unmap() error {
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
		m.data = nil
	}
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Store is a memory-mapped-file blob.Store.
type Store struct {
	mu       sync.Mutex
	root     string
	cache    *lru.Cache[blob.Key, *mapping]
	evictErr error // last error from an automatic LRU eviction; surfaced at Close
}

// New returns a Store rooted at root with the default mapping cache
// size. root must already exist and be a directory.
func New(root string) (*Store, error) {
	return NewWithCacheSize(root, DefaultCacheSize)
}

// NewWithCacheSize returns a Store rooted at root whose live-mapping LRU
// holds at most cacheSize entries. cacheSize must be positive.
func NewWithCacheSize(root string, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		return nil, blob.IOErrorNoKey("invalid mapping cache size", errors.New("cacheSize must be positive"))
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, blob.IOErrorNoKey("stat store root", err)
	}
	if !info.IsDir() {
		return nil, blob.IOErrorNoKey("store root is not a directory", errors.New(root))
	}

	s := &Store{root: root}
	cache, err := lru.NewWithEvict(cacheSize, func(_ blob.Key, m *mapping) {
		if err := m.unmap(); err != nil {
			s.evictErr = err
		}
	})
	if err != nil {
		return nil, blob.IOErrorNoKey("create mapping cache", err)
	}
	s.cache = cache

	return s, nil
}

func (s *Store) path(key blob.Key) string {
	return pathhash.Split(s.root, key)
}

// mapFile memory-maps f, whose on-disk size is size. size must be > 0;
// a zero-length file cannot be mapped.
func mapFile(f *os.File, size int64) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// Contains implements blob.Store.
func (s *Store) Contains(key blob.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Peek(key); ok {
		return true, nil
	}
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, blob.IOError(key, "stat blob", err)
}

// Meta implements blob.Store.
func (s *Store) Meta(key blob.Key) (blob.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.cache.Peek(key); ok {
		return blob.Meta{Size: uint64(len(m.data))}, nil
	}
	info, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return blob.Meta{}, blob.NotFound(key, "blob not found")
		}
		return blob.Meta{}, blob.IOError(key, "stat blob", err)
	}
	return blob.Meta{Size: uint64(info.Size())}, nil
}

// Put implements blob.Store.
func (s *Store) Put(key blob.Key, value []byte, opt blob.PutOpt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch opt.Kind {
	case blob.PutCreate:
		return s.createLocked(key, value)
	case blob.PutReplace:
		return s.replaceLocked(key, value, opt.Range)
	case blob.PutReplaceOrCreate:
		return blob.IOErrorNoKey("ReplaceOrCreate is not implemented by the mmap backend", errors.New(key.String()))
	default:
		return blob.IOErrorNoKey("unknown put kind", errors.New("invalid PutOpt"))
	}
}

func (s *Store) createLocked(key blob.Key, value []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return blob.IOError(key, "create blob directory", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, FileMode)
	if err != nil {
		if os.IsExist(err) {
			return blob.AlreadyExists(key, "blob already exists")
		}
		return blob.IOError(key, "create blob", err)
	}
	if len(value) > 0 {
		if err := f.Truncate(int64(len(value))); err != nil {
			f.Close()
			os.Remove(path)
			return blob.IOError(key, "size blob", err)
		}
		data, err := mapFile(f, int64(len(value)))
		if err != nil {
			f.Close()
			os.Remove(path)
			return blob.IOError(key, "mmap blob", err)
		}
		copy(data, value)
		s.cache.Add(key, &mapping{file: f, data: data})
		return nil
	}
	// A zero-length blob cannot be mapped; keep the file but no mapping.
	f.Close()
	return nil
}

func (s *Store) replaceLocked(key blob.Key, value []byte, r blob.Range) error {
	if m, ok := s.cache.Get(key); ok {
		if !blob.Whole(uint64(len(m.data))).Contains(r) || r.Len() != int64(len(value)) {
			return blob.RangeErrf(key, "range %d..%d does not fit mapping of size %d or value of length %d",
				r.Start, r.End, len(m.data), len(value))
		}
		copy(m.data[r.Start:r.End], value)
		return nil
	}

	path := s.path(key)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return blob.NotFound(key, "blob not found")
		}
		return blob.IOError(key, "open blob", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return blob.IOError(key, "stat blob", err)
	}
	if !blob.Whole(uint64(info.Size())).Contains(r) || r.Len() != int64(len(value)) {
		f.Close()
		return blob.RangeErrf(key, "range %d..%d does not fit blob of size %d or value of length %d",
			r.Start, r.End, info.Size(), len(value))
	}
	data, err := mapFile(f, info.Size())
	if err != nil {
		f.Close()
		return blob.IOError(key, "mmap blob", err)
	}
	copy(data[r.Start:r.End], value)
	s.cache.Add(key, &mapping{file: f, data: data})
	return nil
}

// Get implements blob.Store.
func (s *Store) Get(key blob.Key, buf []byte, opt blob.GetOpt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.cache.Get(key)
	if !ok {
		path := s.path(key)
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			if os.IsNotExist(err) {
				return blob.NotFound(key, "blob not found")
			}
			return blob.IOError(key, "open blob", err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return blob.IOError(key, "stat blob", err)
		}
		if info.Size() == 0 {
			f.Close()
			if len(buf) != 0 {
				return blob.RangeErrf(key, "buffer length %d does not match blob size 0", len(buf))
			}
			return nil
		}
		data, err := mapFile(f, info.Size())
		if err != nil {
			f.Close()
			return blob.IOError(key, "mmap blob", err)
		}
		m = &mapping{file: f, data: data}
		s.cache.Add(key, m)
	}

	switch opt.Kind {
	case blob.GetAll:
		if len(buf) != len(m.data) {
			return blob.RangeErrf(key, "buffer length %d does not match blob size %d", len(buf), len(m.data))
		}
		copy(buf, m.data)
		return nil
	case blob.GetRange:
		if !blob.Whole(uint64(len(m.data))).Contains(opt.Range) || opt.Range.Len() != int64(len(buf)) {
			return blob.RangeErrf(key, "range %d..%d does not fit blob of size %d or buffer of length %d",
				opt.Range.Start, opt.Range.End, len(m.data), len(buf))
		}
		copy(buf, m.data[opt.Range.Start:opt.Range.End])
		return nil
	default:
		return blob.IOErrorNoKey("unknown get kind", errors.New("invalid GetOpt"))
	}
}

// Delete implements blob.Store.
func (s *Store) Delete(key blob.Key, opt blob.DeleteOpt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch opt.Kind {
	case blob.DeleteDiscard:
		if _, ok := s.cache.Peek(key); ok {
			s.cache.Remove(key) // triggers the evict callback, which unmaps
			if s.evictErr != nil {
				err := s.evictErr
				s.evictErr = nil
				return blob.IOError(key, "unmap blob", err)
			}
		}
		if err := os.Remove(s.path(key)); err != nil {
			if os.IsNotExist(err) {
				return blob.NotFound(key, "blob not found")
			}
			return blob.IOError(key, "delete blob", err)
		}
		return nil
	case blob.DeleteInterest:
		return blob.IOErrorNoKey("partial-interest delete is not implemented", errors.New("DeleteInterest"))
	default:
		return blob.IOErrorNoKey("unknown delete kind", errors.New("invalid DeleteOpt"))
	}
}

// Close unmaps and closes every resident mapping. The Store must not be
// used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge() // triggers the evict callback for every entry
	err := s.evictErr
	s.evictErr = nil
	return err
}

var _ blob.Store = (*Store)(nil)
