package sqlite

import (
	"os"
	"testing"

	"github.com/marmos91/blobstore/blob"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "blobstore-sqlite-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(1)
	data := []byte("hello relational world")

	if err := s.Put(key, data, blob.Create()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	buf := make([]byte, len(data))
	if err := s.Get(key, buf, blob.All()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(buf) != string(data) {
		t.Errorf("Get = %q, want %q", buf, data)
	}
}

func TestCreateTwiceFails(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(2)

	if err := s.Put(key, []byte("a"), blob.Create()); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	err := s.Put(key, []byte("b"), blob.Create())
	if !blob.Is(err, blob.KindAlreadyExists) {
		t.Errorf("second Put error = %v, want KindAlreadyExists", err)
	}
}

func TestReplaceOrCreateIsNotImplemented(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(3)

	err := s.Put(key, []byte("x"), blob.ReplaceOrCreate())
	if err == nil {
		t.Error("ReplaceOrCreate succeeded, want an error")
	}
}

func TestReplaceInPlace(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(4)

	if err := s.Put(key, []byte("aaaaaaaaaa"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Put(key, []byte("BBB"), blob.Replace(blob.Range{Start: 2, End: 5})); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	buf := make([]byte, 10)
	if err := s.Get(key, buf, blob.All()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got, want := string(buf), "aaBBBaaaaa"; got != want {
		t.Errorf("Get = %q, want %q", got, want)
	}
}

func TestReplaceOutOfRangeFails(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(5)

	if err := s.Put(key, []byte("short"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Put(key, []byte("toolong!!"), blob.Replace(blob.Range{Start: 0, End: 9}))
	if !blob.Is(err, blob.KindRangeError) {
		t.Errorf("Replace out of range error = %v, want KindRangeError", err)
	}
}

func TestDeleteDiscard(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(6)

	if err := s.Put(key, []byte("gone soon"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(key, blob.Discard()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	ok, err := s.Contains(key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("Contains = true after Delete, want false")
	}
}

func TestGetMissingKeyIsNotFound(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(7)

	buf := make([]byte, 4)
	err := s.Get(key, buf, blob.All())
	if !blob.Is(err, blob.KindNotFound) {
		t.Errorf("Get error = %v, want KindNotFound", err)
	}
}

func TestIndexSurvivesReopen(t *testing.T) {
	dir, err := os.MkdirTemp("", "blobstore-sqlite-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	key := blob.KeyFromUint64(8)
	if err := s.Put(key, []byte("persisted"), blob.Create()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := New(dir)
	if err != nil {
		t.Fatalf("reopen New: %v", err)
	}
	defer s2.Close()

	ok, err := s2.Contains(key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Error("Contains = false after reopen, want true")
	}
}
