package blob

// Store is the contract implemented by every blob storage backend
// (backend/fs, backend/mmap, backend/sqlite) and by the write-back cache
// wrapper in package cache.
//
// Implementations are free to impose their own concurrency requirements;
// see each backend's package doc. Callers that need to share a Store
// across goroutines without restriction should wrap it in package cache,
// whose MemoryCache is safe for concurrent use on independent keys.
type Store interface {
	// Contains reports whether key is present, without reading its
	// contents.
	Contains(key Key) (bool, error)

	// Meta returns the size of the blob at key. Returns a KindNotFound
	// error if key is absent.
	Meta(key Key) (Meta, error)

	// Put writes value under key according to opt. See PutOpt's Kind
	// values for the exact precondition and error behaviour of each
	// mode.
	Put(key Key, value []byte, opt PutOpt) error

	// Get reads into buf according to opt. buf must be exactly the
	// right length for opt (the whole blob for All, or opt.Range.Len()
	// for InRange); a mismatched length is a KindRangeError.
	Get(key Key, buf []byte, opt GetOpt) error

	// Delete removes key according to opt. DeleteDiscard removes the
	// blob entirely; DeleteInterest is reserved and always errors.
	Delete(key Key, opt DeleteOpt) error

	// Close releases any resources held by the store (open files,
	// database handles, memory mappings). The store must not be used
	// afterwards.
	Close() error
}

// GetOwned reads the blob at key according to opt and returns it as a
// freshly allocated slice, sized from Meta for All or from opt.Range for
// InRange. It is a convenience wrapper around Get for callers that don't
// already have a buffer to read into; Store implementations do not need
// to provide it themselves.
func GetOwned(s Store, key Key, opt GetOpt) ([]byte, error) {
	var size int64
	switch opt.Kind {
	case GetAll:
		m, err := s.Meta(key)
		if err != nil {
			return nil, err
		}
		size = int64(m.Size)
	case GetRange:
		size = opt.Range.Len()
		if size < 0 {
			return nil, RangeErrf(key, "invalid range %d..%d", opt.Range.Start, opt.Range.End)
		}
	}
	buf := make([]byte, size)
	if err := s.Get(key, buf, opt); err != nil {
		return nil, err
	}
	return buf, nil
}
