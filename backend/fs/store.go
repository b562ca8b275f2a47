// Package fs is a directory-of-files blob backend: every key maps to one
// regular file on disk, nested two directories deep via
// internal/pathhash. It is the only backend safe for unrestricted
// concurrent use, since it carries no in-process state beyond the root
// path.
package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/marmos91/blobstore/blob"
	"github.com/marmos91/blobstore/internal/pathhash"
)

// DirMode is the permission mode used for directories created under root.
const DirMode = 0o755

// FileMode is the permission mode used for blob files.
const FileMode = 0o644

// Store is a filesystem-backed blob.Store. Each operation opens and
// closes the underlying file itself; there is no cached file-descriptor
// state, so a Store may be used freely from multiple goroutines.
type Store struct {
	root string
}

// New returns a Store rooted at root. root must already exist and be a
// directory.
func New(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, blob.IOErrorNoKey("stat store root", err)
	}
	if !info.IsDir() {
		return nil, blob.IOErrorNoKey("store root is not a directory", errors.New(root))
	}
	return &Store{root: root}, nil
}

func (s *Store) path(key blob.Key) string {
	return pathhash.Split(s.root, key)
}

// Contains implements blob.Store.
func (s *Store) Contains(key blob.Key) (bool, error) {
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
	path := s.path(key)

	switch opt.Kind {
	case blob.PutCreate:
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
		defer f.Close()
		if _, err := f.Write(value); err != nil {
			return blob.IOError(key, "write blob", err)
		}
		return nil

	case blob.PutReplace:
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			if os.IsNotExist(err) {
				return blob.NotFound(key, "blob not found")
			}
			return blob.IOError(key, "open blob", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return blob.IOError(key, "stat blob", err)
		}
		size := info.Size()

		if !blob.Whole(uint64(size)).Contains(opt.Range) || opt.Range.Len() != int64(len(value)) {
			return blob.RangeErrf(key, "range %d..%d does not fit blob of size %d or value of length %d",
				opt.Range.Start, opt.Range.End, size, len(value))
		}
		if _, err := f.WriteAt(value, opt.Range.Start); err != nil {
			return blob.IOError(key, "write blob range", err)
		}
		return nil

	case blob.PutReplaceOrCreate:
		if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
			return blob.IOError(key, "create blob directory", err)
		}
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, FileMode)
		if err != nil {
			return blob.IOError(key, "create or replace blob", err)
		}
		defer f.Close()
		if _, err := f.Write(value); err != nil {
			return blob.IOError(key, "write blob", err)
		}
		return nil

	default:
		return blob.IOErrorNoKey("unknown put kind", errors.New("invalid PutOpt"))
	}
}

// Get implements blob.Store.
func (s *Store) Get(key blob.Key, buf []byte, opt blob.GetOpt) error {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return blob.NotFound(key, "blob not found")
		}
		return blob.IOError(key, "open blob", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return blob.IOError(key, "stat blob", err)
	}
	size := info.Size()

	var off int64
	switch opt.Kind {
	case blob.GetAll:
		if size != int64(len(buf)) {
			return blob.RangeErrf(key, "buffer length %d does not match blob size %d", len(buf), size)
		}
		off = 0
	case blob.GetRange:
		if !blob.Whole(uint64(size)).Contains(opt.Range) || opt.Range.Len() != int64(len(buf)) {
			return blob.RangeErrf(key, "range %d..%d does not fit blob of size %d or buffer of length %d",
				opt.Range.Start, opt.Range.End, size, len(buf))
		}
		off = opt.Range.Start
	default:
		return blob.IOErrorNoKey("unknown get kind", errors.New("invalid GetOpt"))
	}

	if _, err := io.ReadFull(io.NewSectionReader(f, off, int64(len(buf))), buf); err != nil {
		return blob.IOError(key, "read blob", err)
	}
	return nil
}

// Delete implements blob.Store.
func (s *Store) Delete(key blob.Key, opt blob.DeleteOpt) error {
	switch opt.Kind {
	case blob.DeleteDiscard:
		path := s.path(key)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return blob.NotFound(key, "blob not found")
			}
			return blob.IOError(key, "delete blob", err)
		}
		s.cleanEmptyDirs(filepath.Dir(path))
		return nil
	case blob.DeleteInterest:
		return blob.IOErrorNoKey("partial-interest delete is not implemented", errors.New("DeleteInterest"))
	default:
		return blob.IOErrorNoKey("unknown delete kind", errors.New("invalid DeleteOpt"))
	}
}

// cleanEmptyDirs removes now-empty directories up to (but not including)
// the store root, mirroring the nested pathhash layout back down after a
// delete.
func (s *Store) cleanEmptyDirs(dir string) {
	for dir != s.root && len(dir) > len(s.root) {
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
}

// Close implements blob.Store. The filesystem backend holds no resources
// between calls, so Close is a no-op.
func (s *Store) Close() error {
	return nil
}

var _ blob.Store = (*Store)(nil)
