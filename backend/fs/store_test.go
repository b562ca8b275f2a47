package fs

import (
	"os"
	"testing"

	"github.com/marmos91/blobstore/blob"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "blobstore-fs-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(1)
	data := []byte("hello world")

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

func TestGetMissingKeyIsNotFound(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(3)

	buf := make([]byte, 4)
	err := s.Get(key, buf, blob.All())
	if !blob.Is(err, blob.KindNotFound) {
		t.Errorf("Get error = %v, want KindNotFound", err)
	}
}

func TestReplaceRequiresExistingKey(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(4)

	err := s.Put(key, []byte("x"), blob.Replace(blob.Range{Start: 0, End: 1}))
	if !blob.Is(err, blob.KindNotFound) {
		t.Errorf("Replace on missing key error = %v, want KindNotFound", err)
	}
}

func TestReplaceInPlace(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(5)

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
	key := blob.KeyFromUint64(6)

	if err := s.Put(key, []byte("short"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Put(key, []byte("toolong!!"), blob.Replace(blob.Range{Start: 0, End: 9}))
	if !blob.Is(err, blob.KindRangeError) {
		t.Errorf("Replace out of range error = %v, want KindRangeError", err)
	}
}

func TestGetRangeMismatchedBufferFails(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(8)

	if err := s.Put(key, []byte("0123456789"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	buf := make([]byte, 3)
	err := s.Get(key, buf, blob.InRange(blob.Range{Start: 2, End: 6}))
	if !blob.Is(err, blob.KindRangeError) {
		t.Errorf("Get error = %v, want KindRangeError", err)
	}
}

func TestReplaceOrCreateCreatesThenReplaces(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(9)

	if err := s.Put(key, []byte("first"), blob.ReplaceOrCreate()); err != nil {
		t.Fatalf("first ReplaceOrCreate: %v", err)
	}
	if err := s.Put(key, []byte("second value"), blob.ReplaceOrCreate()); err != nil {
		t.Fatalf("second ReplaceOrCreate: %v", err)
	}

	m, err := s.Meta(key)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if m.Size != uint64(len("second value")) {
		t.Errorf("Meta.Size = %d, want %d", m.Size, len("second value"))
	}
}

func TestDeleteDiscard(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(10)

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

func TestDeleteMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(11)

	err := s.Delete(key, blob.Discard())
	if !blob.Is(err, blob.KindNotFound) {
		t.Errorf("Delete error = %v, want KindNotFound", err)
	}
}

func TestDeleteInterestNotImplemented(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(12)

	err := s.Delete(key, blob.Interest(blob.Range{Start: 0, End: 1}))
	if err == nil {
		t.Error("Delete with Interest succeeded, want an error")
	}
}

func TestContains(t *testing.T) {
	s := newTestStore(t)
	key := blob.KeyFromUint64(13)

	ok, err := s.Contains(key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("Contains = true before Put, want false")
	}

	if err := s.Put(key, []byte("x"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err = s.Contains(key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Error("Contains = false after Put, want true")
	}
}
