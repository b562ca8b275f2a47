// Package config loads blob store configuration from a YAML file,
// environment variables, and defaults, the way the teacher's pkg/config
// package does for the full server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/blobstore/internal/bytesize"
)

// Config is the top-level blob store configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (BLOBSTORE_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// Environment variables are read only for keys that the configuration
// file sets; when no file is found, Load ignores them and returns the
// defaults.
type Config struct {
	// Backend selects which storage backend to open.
	// Valid values: fs, mmap, sqlite
	Backend string `mapstructure:"backend" validate:"required,oneof=fs mmap sqlite" yaml:"backend"`

	// Root is the backend's storage directory.
	Root string `mapstructure:"root" validate:"required" yaml:"root"`

	// MmapCapacity bounds the number of live memory mappings kept open
	// at once by the mmap backend. Ignored by fs and sqlite.
	MmapCapacity int `mapstructure:"mmap_capacity" validate:"omitempty,min=1" yaml:"mmap_capacity,omitempty"`

	// Cache configures the optional write-back memory cache layered in
	// front of the backend.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CacheConfig controls the write-back memory cache.
type CacheConfig struct {
	// Enabled controls whether Open wraps the backend in a MemoryCache.
	// Default: false (operate directly against the backend)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// SizeBytes is the cache's byte budget.
	// Supports human-readable formats: "1GB", "512Mi", "10Gi".
	// Default: 64Mi
	SizeBytes bytesize.ByteSize `mapstructure:"size_bytes" yaml:"size_bytes,omitempty"`

	// Metrics configures Prometheus instrumentation for the cache.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics,omitempty"`
}

// MetricsConfig controls Prometheus instrumentation for the cache. When
// Enabled is false, no collectors are registered and RecordResidentBytes/
// RecordEviction are no-ops.
type MetricsConfig struct {
	// Enabled registers the cache's counters/gauges against
	// prometheus.DefaultRegisterer.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: blobstore
	Namespace string `mapstructure:"namespace" yaml:"namespace,omitempty"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: cache
	Subsystem string `mapstructure:"subsystem" yaml:"subsystem,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format.
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written.
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// Load loads configuration from file, environment, and defaults.
//
// configPath may be empty, in which case the default location
// ($XDG_CONFIG_HOME/blobstore/config.yaml, falling back to
// ~/.config/blobstore/config.yaml) is used if present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if found {
		if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills in any zero-valued fields with sensible defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Backend == "" {
		cfg.Backend = "fs"
	}
	if cfg.Root == "" {
		cfg.Root = filepath.Join(getConfigDir(), "data")
	}
	if cfg.MmapCapacity == 0 {
		cfg.MmapCapacity = 64
	}
	if cfg.Cache.SizeBytes == 0 {
		cfg.Cache.SizeBytes = 64 * 1024 * 1024
	}
	if cfg.Cache.Metrics.Enabled {
		if cfg.Cache.Metrics.Namespace == "" {
			cfg.Cache.Metrics.Namespace = "blobstore"
		}
		if cfg.Cache.Metrics.Subsystem == "" {
			cfg.Cache.Metrics.Subsystem = "cache"
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

var validate = validator.New()

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}

// SaveConfig writes cfg to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("BLOBSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "blobstore")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "blobstore")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
