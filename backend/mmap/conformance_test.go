package mmap_test

import (
	"testing"

	"github.com/marmos91/blobstore/backend/mmap"
	"github.com/marmos91/blobstore/blob"
	"github.com/marmos91/blobstore/internal/backendtest"
)

func TestConformance(t *testing.T) {
	suite := &backendtest.Suite{
		NewStore: func(t *testing.T) blob.Store {
			store, err := mmap.New(t.TempDir())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			return store
		},
		SupportsReplaceOrCreate: false,
	}
	suite.Run(t)
}
