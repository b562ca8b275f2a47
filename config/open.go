package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/blobstore/backend/fs"
	"github.com/marmos91/blobstore/backend/mmap"
	"github.com/marmos91/blobstore/backend/sqlite"
	"github.com/marmos91/blobstore/blob"
	"github.com/marmos91/blobstore/cache"
)

// Open constructs the backend named by cfg.Backend rooted at cfg.Root,
// wrapping it in a write-back MemoryCache if cfg.Cache.Enabled.
func Open(cfg *Config) (blob.Store, error) {
	var (
		store blob.Store
		err   error
	)

	switch cfg.Backend {
	case "fs":
		store, err = fs.New(cfg.Root)
	case "mmap":
		store, err = mmap.NewWithCacheSize(cfg.Root, cfg.MmapCapacity)
	case "sqlite":
		store, err = sqlite.New(cfg.Root)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s backend at %q: %w", cfg.Backend, cfg.Root, err)
	}

	if cfg.Cache.Enabled {
		var metrics cache.Metrics
		if cfg.Cache.Metrics.Enabled {
			metrics, err = cache.NewPrometheusMetrics(prometheus.DefaultRegisterer, cfg.Cache.Metrics.Namespace, cfg.Cache.Metrics.Subsystem)
			if err != nil {
				return nil, fmt.Errorf("registering cache metrics: %w", err)
			}
		}
		store = cache.New(store, cfg.Cache.SizeBytes.Int64(), metrics)
	}
	return store, nil
}
