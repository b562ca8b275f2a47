// Package tracereader reads the Azure Public Dataset's blob-access trace
// CSV format into AccessRecord values, hashing its string identifier
// columns down to uint64s the way the original implementation's
// azure_trace.rs does (there, via Rust's DefaultHasher; here, via
// hash/fnv, the idiomatic Go substitute for the same purpose). It has no
// coupling to package blob or cache: a caller wanting to replay a
// workload against a Store does the key derivation itself.
package tracereader

import (
	"encoding/csv"
	"hash/fnv"
	"io"
	"strconv"
	"strings"
)

// BlobType categorizes the MIME-derived type column of a trace record.
type BlobType int

const (
	BlobTypeApplication BlobType = iota
	BlobTypeImage
	BlobTypeText
	BlobTypeNone
	BlobTypeOther
)

func (t BlobType) String() string {
	switch t {
	case BlobTypeApplication:
		return "application"
	case BlobTypeImage:
		return "image"
	case BlobTypeText:
		return "text"
	case BlobTypeNone:
		return "none"
	default:
		return "other"
	}
}

// blobTypeFromString derives a BlobType from the second "/"-separated
// component of a MIME-like string, e.g. "application/octet-stream" ->
// BlobTypeApplication.
func blobTypeFromString(s string) BlobType {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 2 {
		return BlobTypeOther
	}
	switch parts[1] {
	case "application":
		return BlobTypeApplication
	case "image":
		return BlobTypeImage
	case "text":
		return BlobTypeText
	case "none":
		return BlobTypeNone
	default:
		return BlobTypeOther
	}
}

// AccessRecord is one row of a blob-access trace: a single read or write
// against a blob, with its identifying columns hashed to uint64s.
type AccessRecord struct {
	Timestamp  uint64
	RegionID   uint64
	UserID     uint64
	AppID      uint64
	FuncID     uint64
	BlobID     uint64
	BlobType   BlobType
	VersionTag uint64
	Size       uint64
	Read       bool
	Write      bool
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Reader reads AccessRecords from a blob-access trace CSV. The expected
// column order is:
//
//	Timestamp,AnonRegion,AnonUserId,AnonAppName,AnonFunctionInvocationId,
//	AnonBlobName,BlobType,AnonBlobETag,BlobBytes,Read,Write
type Reader struct {
	records *csv.Reader
}

// NewReader wraps r as a trace Reader. The first row of r is consumed
// and discarded as a header, matching the csv crate's default behaviour
// that the original reader relies on.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	_, _ = cr.Read() // header row
	return &Reader{records: cr}
}

// Next returns the next valid AccessRecord, skipping over malformed rows
// the way the original reader's next_record does, and returns io.EOF
// once the underlying CSV is exhausted.
func (r *Reader) Next() (AccessRecord, error) {
	for {
		row, err := r.records.Read()
		if err == io.EOF {
			return AccessRecord{}, io.EOF
		}
		if err != nil {
			continue
		}
		rec, ok := parseRecord(row)
		if !ok {
			continue
		}
		return rec, nil
	}
}

func parseRecord(row []string) (AccessRecord, bool) {
	if len(row) < 11 {
		return AccessRecord{}, false
	}

	timestamp, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return AccessRecord{}, false
	}

	sizeF, _ := strconv.ParseFloat(row[8], 64)
	size := uint64(sizeF + 0.5) // round half up, matching f64::round

	read, err := strconv.ParseBool(strings.ToLower(row[9]))
	if err != nil {
		return AccessRecord{}, false
	}
	write, err := strconv.ParseBool(strings.ToLower(row[10]))
	if err != nil {
		return AccessRecord{}, false
	}

	return AccessRecord{
		Timestamp:  timestamp,
		RegionID:   hashString(row[1]),
		UserID:     hashString(row[2]),
		AppID:      hashString(row[3]),
		FuncID:     hashString(row[4]),
		BlobID:     hashString(row[5]),
		BlobType:   blobTypeFromString(row[6]),
		VersionTag: hashString(row[7]),
		Size:       size,
		Read:       read,
		Write:      write,
	}, true
}
