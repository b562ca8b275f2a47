package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across backends, the cache
// and the FFI facade. Use these keys consistently so log aggregation and
// querying stays uniform regardless of which backend emitted the line.
const (
	// Tracing
	KeyTraceID = "trace_id"

	// Operation
	KeyOperation = "operation" // put, get, delete, contains, meta
	KeyBackend   = "backend"   // fs, mmap, sqlite
	KeyKey       = "key"       // blob key, hex-encoded

	// I/O
	KeyOffset       = "offset"
	KeyLength       = "length"
	KeySize         = "size"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"
	KeyPath         = "path"

	// Cache
	KeyCacheHit      = "cache_hit"
	KeyCacheSize     = "cache_size"
	KeyCacheCapacity = "cache_capacity"
	KeyEvicted       = "evicted"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorKind  = "error_kind"
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"
)

// TraceID returns a slog.Attr for the operation trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// Operation returns a slog.Attr for the operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Backend returns a slog.Attr for the backend identifier
func Backend(name string) slog.Attr {
	return slog.String(KeyBackend, name)
}

// Key returns a slog.Attr for a blob key, formatted as hex
func Key(k []byte) slog.Attr {
	return slog.String(KeyKey, fmt.Sprintf("%x", k))
}

// KeyHex returns a slog.Attr for a blob key already in hex form
func KeyHex(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// Path returns a slog.Attr for a filesystem path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Offset returns a slog.Attr for a byte offset
func Offset(off int64) slog.Attr {
	return slog.Int64(KeyOffset, off)
}

// Length returns a slog.Attr for a byte length
func Length(n int64) slog.Attr {
	return slog.Int64(KeyLength, n)
}

// Size returns a slog.Attr for a blob size in bytes
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// BytesRead returns a slog.Attr for actual bytes read
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for actual bytes written
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// CacheHit returns a slog.Attr for cache hit indicator
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// CacheSize returns a slog.Attr for current resident cache size in bytes
func CacheSize(size int64) slog.Attr {
	return slog.Int64(KeyCacheSize, size)
}

// CacheCapacity returns a slog.Attr for the cache byte budget
func CacheCapacity(capacity int64) slog.Attr {
	return slog.Int64(KeyCacheCapacity, capacity)
}

// Evicted returns a slog.Attr for number of entries evicted
func Evicted(n int) slog.Attr {
	return slog.Int(KeyEvicted, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorKind returns a slog.Attr for the taxonomy kind of an error
func ErrorKind(kind string) slog.Attr {
	return slog.String(KeyErrorKind, kind)
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}
