// Package commands implements the blobstorectl CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/blobstore/blob"
	"github.com/marmos91/blobstore/config"
	"github.com/marmos91/blobstore/internal/cli/output"
	"github.com/marmos91/blobstore/internal/logger"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath   string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:           "blobstorectl",
	Short:         "Inspect and exercise a blob store backend directly",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/blobstore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(containsCmd)
}

func openStore() (blob.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, err
	}
	logger.Info("opening store", logger.Backend(cfg.Backend), logger.Path(cfg.Root))
	return config.Open(cfg)
}

// printer builds an output.Printer for the currently configured --output
// format, writing to stdout.
func printer() (*output.Printer, error) {
	f, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(os.Stdout, f, false), nil
}

// parseKey decodes s, the hex encoding produced by Key.String, back into
// a Key.
func parseKey(s string) (blob.Key, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return blob.Key{}, fmt.Errorf("invalid key %q: %w", s, err)
	}
	if len(raw) != blob.KeySize {
		return blob.Key{}, fmt.Errorf("invalid key %q: want %d bytes, got %d", s, blob.KeySize, len(raw))
	}
	var k blob.Key
	copy(k[:], raw)
	return k, nil
}
