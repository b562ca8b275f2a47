package blob

// PutKind selects the precondition a Put call enforces against the
// existing state of the key.
type PutKind int

const (
	// PutCreate requires the key to be absent; the blob is created at
	// exactly len(value) bytes. Fails with AlreadyExists if the key is
	// already present.
	PutCreate PutKind = iota

	// PutReplace requires the key to be present and overwrites the byte
	// range Range of the existing blob in place, without changing its
	// size. Fails with NotFound if the key is absent, and with
	// RangeError if Range does not fit within the blob or its length
	// does not match len(value).
	PutReplace

	// PutReplaceOrCreate creates the blob at exactly len(value) bytes if
	// absent, or replaces its entire contents (and resizes it to
	// len(value)) if present.
	PutReplaceOrCreate
)

// PutOpt selects the precondition for a Put call. Construct one with
// Create, Replace or ReplaceOrCreate.
type PutOpt struct {
	Kind  PutKind
	Range Range // meaningful only when Kind == PutReplace
}

// Create returns a PutOpt requiring the key to be absent.
func Create() PutOpt {
	return PutOpt{Kind: PutCreate}
}

// Replace returns a PutOpt that overwrites r in an existing blob.
func Replace(r Range) PutOpt {
	return PutOpt{Kind: PutReplace, Range: r}
}

// ReplaceOrCreate returns a PutOpt that creates the blob if absent or
// replaces it wholesale if present.
func ReplaceOrCreate() PutOpt {
	return PutOpt{Kind: PutReplaceOrCreate}
}

// GetKind selects how much of a blob a Get call reads.
type GetKind int

const (
	// GetAll reads the entire blob. The caller's buffer must be exactly
	// the blob's size.
	GetAll GetKind = iota

	// GetRange reads Range of the blob. The caller's buffer must be
	// exactly Range.Len() bytes.
	GetRange
)

// GetOpt selects how much of a blob to read. Construct one with All or
// InRange.
type GetOpt struct {
	Kind  GetKind
	Range Range // meaningful only when Kind == GetRange
}

// All returns a GetOpt that reads the whole blob.
func All() GetOpt {
	return GetOpt{Kind: GetAll}
}

// InRange returns a GetOpt that reads r of the blob.
func InRange(r Range) GetOpt {
	return GetOpt{Kind: GetRange, Range: r}
}

// DeleteKind selects the semantics of a Delete call.
type DeleteKind int

const (
	// DeleteDiscard removes the blob entirely.
	DeleteDiscard DeleteKind = iota

	// DeleteInterest is reserved for a future partial-interest delete
	// (dropping only a byte range of interest while keeping the rest of
	// the blob). No backend implements it; calling Delete with this
	// kind always fails.
	DeleteInterest
)

// DeleteOpt selects the semantics of a Delete call. Construct one with
// Discard or Interest.
type DeleteOpt struct {
	Kind  DeleteKind
	Range Range // meaningful only when Kind == DeleteInterest
}

// Discard returns a DeleteOpt that removes the blob entirely.
func Discard() DeleteOpt {
	return DeleteOpt{Kind: DeleteDiscard}
}

// Interest returns a DeleteOpt requesting a partial-interest delete over r.
// No backend supports this; it is reserved for future use and always
// returns an error.
func Interest(r Range) DeleteOpt {
	return DeleteOpt{Kind: DeleteInterest, Range: r}
}
