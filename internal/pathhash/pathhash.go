// Package pathhash maps a blob key onto a filesystem path, used by
// backend/fs and backend/mmap to keep blob files spread across a small
// nested directory tree instead of one enormous flat directory.
package pathhash

import (
	"encoding/hex"
	"path/filepath"

	"github.com/marmos91/blobstore/blob"
)

// Split hex-encodes key (16 lowercase hex characters for an 8-byte key)
// and splits the encoding into two equal halves, joined under root as
// nested directory components: root/<first 8 hex chars>/<last 8 hex
// chars>. The result is the path to the blob file itself, not a
// directory; callers that need to create it must mkdir the parent.
func Split(root string, key blob.Key) string {
	enc := hex.EncodeToString(key[:])
	mid := len(enc) / 2
	return filepath.Join(root, enc[:mid], enc[mid:])
}
