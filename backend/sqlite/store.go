// Package sqlite is a blob backend built on a single embedded relational
// table: every blob is a row in blobs(content BLOB NOT NULL), addressed
// by SQLite's implicit rowid. A persistent key->rowid index is kept in
// memory and flushed to disk on Close, so reopening a store doesn't
// require a table scan to rediscover existing keys.
//
// Like backend/mmap, a Store is not safe for unrestricted concurrent
// use; it serializes its own operations internally with a mutex.
package sqlite

import (
	"bytes"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/blobstore/blob"
)

const (
	dbFileName  = "blobs.db"
	mapFileName = "blobs.map.dump"
	tableDDL    = `CREATE TABLE IF NOT EXISTS blobs (content BLOB NOT NULL)`
)

// Store is a relational-table blob.Store.
type Store struct {
	mu      sync.Mutex
	root    string
	db      *gorm.DB
	rowByID map[blob.Key]int64
}

// New opens (or creates) a SQLite-backed store rooted at root. root must
// already exist and be a directory; the database file and key index are
// created inside it on first use.
func New(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, blob.IOErrorNoKey("stat store root", err)
	}
	if !info.IsDir() {
		return nil, blob.IOErrorNoKey("store root is not a directory", errors.New(root))
	}

	dsn := filepath.Join(root, dbFileName) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, blob.IOErrorNoKey("open database", err)
	}
	if err := db.Exec(tableDDL).Error; err != nil {
		return nil, blob.IOErrorNoKey("create blobs table", err)
	}

	rowByID, err := loadIndex(filepath.Join(root, mapFileName))
	if err != nil {
		return nil, blob.IOErrorNoKey("load key index", err)
	}

	return &Store{root: root, db: db, rowByID: rowByID}, nil
}

func loadIndex(path string) (map[blob.Key]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[blob.Key]int64), nil
		}
		return nil, err
	}
	var index map[blob.Key]int64
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&index); err != nil {
		return nil, err
	}
	return index, nil
}

// Contains implements blob.Store. It consults only the in-memory index,
// never the database.
func (s *Store) Contains(key blob.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.rowByID[key]
	return ok, nil
}

// Meta implements blob.Store.
func (s *Store) Meta(key blob.Key) (blob.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rowID, ok := s.rowByID[key]
	if !ok {
		return blob.Meta{}, blob.NotFound(key, "blob not found")
	}
	var size uint64
	row := s.db.Raw("SELECT length(content) FROM blobs WHERE rowid = ?", rowID).Row()
	if err := row.Scan(&size); err != nil {
		return blob.Meta{}, blob.IOError(key, "read blob length", err)
	}
	return blob.Meta{Size: size}, nil
}

// Put implements blob.Store.
func (s *Store) Put(key blob.Key, value []byte, opt blob.PutOpt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch opt.Kind {
	case blob.PutCreate:
		if _, ok := s.rowByID[key]; ok {
			return blob.AlreadyExists(key, "blob already exists")
		}
		result := s.db.Exec("INSERT INTO blobs (content) VALUES (?)", value)
		if result.Error != nil {
			return blob.IOError(key, "insert blob", result.Error)
		}
		var rowID int64
		if err := s.db.Raw("SELECT last_insert_rowid()").Row().Scan(&rowID); err != nil {
			return blob.IOError(key, "read inserted rowid", err)
		}
		s.rowByID[key] = rowID
		return nil

	case blob.PutReplace:
		rowID, ok := s.rowByID[key]
		if !ok {
			return blob.NotFound(key, "blob not found")
		}
		var size uint64
		if err := s.db.Raw("SELECT length(content) FROM blobs WHERE rowid = ?", rowID).Row().Scan(&size); err != nil {
			return blob.IOError(key, "read blob length", err)
		}
		r := opt.Range
		if !blob.Whole(size).Contains(r) || r.Len() != int64(len(value)) {
			return blob.RangeErrf(key, "range %d..%d does not fit blob of size %d or value of length %d",
				r.Start, r.End, size, len(value))
		}
		result := s.db.Exec(
			"UPDATE blobs SET content = CAST(substr(content, 1, ?) || ? || substr(content, ?) AS BLOB) WHERE rowid = ?",
			r.Start, value, r.End+1, rowID,
		)
		if result.Error != nil {
			return blob.IOError(key, "update blob range", result.Error)
		}
		return nil

	case blob.PutReplaceOrCreate:
		return blob.IOErrorNoKey("ReplaceOrCreate is not implemented by the sqlite backend", errors.New(key.String()))

	default:
		return blob.IOErrorNoKey("unknown put kind", errors.New("invalid PutOpt"))
	}
}

// Get implements blob.Store.
func (s *Store) Get(key blob.Key, buf []byte, opt blob.GetOpt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rowID, ok := s.rowByID[key]
	if !ok {
		return blob.NotFound(key, "blob not found")
	}

	var content []byte
	if err := s.db.Raw("SELECT content FROM blobs WHERE rowid = ?", rowID).Row().Scan(&content); err != nil {
		return blob.IOError(key, "read blob", err)
	}

	switch opt.Kind {
	case blob.GetAll:
		if len(content) != len(buf) {
			return blob.RangeErrf(key, "buffer length %d does not match blob size %d", len(buf), len(content))
		}
		copy(buf, content)
		return nil
	case blob.GetRange:
		if !blob.Whole(uint64(len(content))).Contains(opt.Range) || opt.Range.Len() != int64(len(buf)) {
			return blob.RangeErrf(key, "range %d..%d does not fit blob of size %d or buffer of length %d",
				opt.Range.Start, opt.Range.End, len(content), len(buf))
		}
		copy(buf, content[opt.Range.Start:opt.Range.End])
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
		rowID, ok := s.rowByID[key]
		if !ok {
			return blob.NotFound(key, "blob not found")
		}
		delete(s.rowByID, key)
		if err := s.db.Exec("DELETE FROM blobs WHERE rowid = ?", rowID).Error; err != nil {
			return blob.IOError(key, "delete blob", err)
		}
		return nil
	case blob.DeleteInterest:
		return blob.IOErrorNoKey("partial-interest delete is not implemented", errors.New("DeleteInterest"))
	default:
		return blob.IOErrorNoKey("unknown delete kind", errors.New("invalid DeleteOpt"))
	}
}

// Close persists the key->rowid index to disk and closes the database
// handle. If the index cannot be serialized, Close returns an error
// without closing the database, so a retry or explicit recovery is
// possible; a store that cannot flush its index must not be trusted on
// next open.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.rowByID); err != nil {
		return blob.IOErrorNoKey("serialize key index", err)
	}
	if err := os.WriteFile(filepath.Join(s.root, mapFileName), buf.Bytes(), 0o644); err != nil {
		return blob.IOErrorNoKey("write key index", err)
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return blob.IOErrorNoKey("access underlying database handle", err)
	}
	if err := sqlDB.Close(); err != nil {
		return blob.IOErrorNoKey("close database", err)
	}
	return nil
}

var _ blob.Store = (*Store)(nil)
