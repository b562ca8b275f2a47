// Package backendtest provides a shared conformance suite that exercises
// the blob.Store contract against any backend implementation, the way the
// teacher's pkg/store/content/cache/testing package tests its Cache
// interface once and reuses it across implementations.
package backendtest

import (
	"testing"

	"github.com/marmos91/blobstore/blob"
)

// Suite runs the full blob.Store conformance battery against a backend.
//
// Usage:
//
//	func TestStore(t *testing.T) {
//	    suite := &backendtest.Suite{
//	        NewStore: func(t *testing.T) blob.Store {
//	            s, err := fs.New(t.TempDir())
//	            if err != nil {
//	                t.Fatal(err)
//	            }
//	            return s
//	        },
//	    }
//	    suite.Run(t)
//	}
type Suite struct {
	// NewStore returns a fresh, empty Store for a single test. It is
	// called once per subtest so tests don't share state.
	NewStore func(t *testing.T) blob.Store

	// SupportsReplaceOrCreate is true unless the backend leaves
	// PutReplaceOrCreate unimplemented (as backend/mmap currently does).
	SupportsReplaceOrCreate bool
}

// Run executes every subtest in the suite.
func (s *Suite) Run(t *testing.T) {
	t.Run("Create", s.runCreate)
	t.Run("Replace", s.runReplace)
	t.Run("ReplaceOrCreate", s.runReplaceOrCreate)
	t.Run("Get", s.runGet)
	t.Run("Delete", s.runDelete)
	t.Run("ContainsAndMeta", s.runContainsAndMeta)
}

func key(n byte) blob.Key {
	var k blob.Key
	k[0] = n
	return k
}

func (s *Suite) runCreate(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	k := key(1)
	if err := store.Put(k, []byte("hello"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := store.Put(k, []byte("world"), blob.Create())
	if !blob.Is(err, blob.KindAlreadyExists) {
		t.Errorf("second Create error = %v, want KindAlreadyExists", err)
	}

	m, err := store.Meta(k)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if m.Size != 5 {
		t.Errorf("Meta.Size = %d, want 5", m.Size)
	}
}

func (s *Suite) runReplace(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	k := key(2)

	err := store.Put(k, []byte("x"), blob.Replace(blob.Range{Start: 0, End: 1}))
	if !blob.Is(err, blob.KindNotFound) {
		t.Errorf("Replace on absent key error = %v, want KindNotFound", err)
	}

	if err := store.Put(k, []byte("aaaaaaaaaa"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Put(k, []byte("BBB"), blob.Replace(blob.Range{Start: 2, End: 5})); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	buf := make([]byte, 10)
	if err := store.Get(k, buf, blob.All()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got, want := string(buf), "aaBBBaaaaa"; got != want {
		t.Errorf("Get after Replace = %q, want %q", got, want)
	}

	err = store.Put(k, []byte("toolong"), blob.Replace(blob.Range{Start: 0, End: 3}))
	if !blob.Is(err, blob.KindRangeError) {
		t.Errorf("Replace with mismatched length error = %v, want KindRangeError", err)
	}

	err = store.Put(k, []byte("x"), blob.Replace(blob.Range{Start: 8, End: 20}))
	if !blob.Is(err, blob.KindRangeError) {
		t.Errorf("Replace out of bounds error = %v, want KindRangeError", err)
	}
}

func (s *Suite) runReplaceOrCreate(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	if !s.SupportsReplaceOrCreate {
		t.Skip("backend does not implement ReplaceOrCreate")
	}

	k := key(3)
	if err := store.Put(k, []byte("first"), blob.ReplaceOrCreate()); err != nil {
		t.Fatalf("ReplaceOrCreate on absent key: %v", err)
	}
	if err := store.Put(k, []byte("replaced-entirely"), blob.ReplaceOrCreate()); err != nil {
		t.Fatalf("ReplaceOrCreate on present key: %v", err)
	}

	buf := make([]byte, len("replaced-entirely"))
	if err := store.Get(k, buf, blob.All()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(buf) != "replaced-entirely" {
		t.Errorf("Get after ReplaceOrCreate = %q, want %q", buf, "replaced-entirely")
	}
}

func (s *Suite) runGet(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	k := key(4)

	buf := make([]byte, 1)
	if err := store.Get(k, buf, blob.All()); !blob.Is(err, blob.KindNotFound) {
		t.Errorf("Get on absent key error = %v, want KindNotFound", err)
	}

	if err := store.Put(k, []byte("0123456789"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rangeBuf := make([]byte, 4)
	if err := store.Get(k, rangeBuf, blob.InRange(blob.Range{Start: 3, End: 7})); err != nil {
		t.Fatalf("Get range: %v", err)
	}
	if string(rangeBuf) != "3456" {
		t.Errorf("Get range = %q, want %q", rangeBuf, "3456")
	}

	badBuf := make([]byte, 2)
	if err := store.Get(k, badBuf, blob.All()); !blob.Is(err, blob.KindRangeError) {
		t.Errorf("Get with mismatched buffer error = %v, want KindRangeError", err)
	}

	oob := make([]byte, 5)
	if err := store.Get(k, oob, blob.InRange(blob.Range{Start: 8, End: 13})); !blob.Is(err, blob.KindRangeError) {
		t.Errorf("Get range out of bounds error = %v, want KindRangeError", err)
	}
}

func (s *Suite) runDelete(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	k := key(5)

	if err := store.Delete(k, blob.Discard()); !blob.Is(err, blob.KindNotFound) {
		t.Errorf("Delete on absent key error = %v, want KindNotFound", err)
	}

	if err := store.Put(k, []byte("gone soon"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(k, blob.Discard()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	ok, err := store.Contains(k)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("Contains after Delete = true, want false")
	}

	err = store.Delete(k, blob.Interest(blob.Range{Start: 0, End: 1}))
	if err == nil {
		t.Error("Delete with Interest kind should always error")
	}
}

func (s *Suite) runContainsAndMeta(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	k := key(6)

	ok, err := store.Contains(k)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("Contains before Create = true, want false")
	}

	if _, err := store.Meta(k); !blob.Is(err, blob.KindNotFound) {
		t.Errorf("Meta before Create error = %v, want KindNotFound", err)
	}

	if err := store.Put(k, []byte("present"), blob.Create()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err = store.Contains(k)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Error("Contains after Create = false, want true")
	}
}
