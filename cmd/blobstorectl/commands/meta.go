package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// metaResult renders a blob's metadata for table/json/yaml output.
type metaResult struct {
	Key       string `json:"key" yaml:"key"`
	SizeBytes uint64 `json:"size_bytes" yaml:"size_bytes"`
	Size      string `json:"size" yaml:"size"`
}

func (m metaResult) Headers() []string { return []string{"Key", "Size", "Bytes"} }

func (m metaResult) Rows() [][]string {
	return [][]string{{m.Key, m.Size, fmt.Sprintf("%d", m.SizeBytes)}}
}

var metaCmd = &cobra.Command{
	Use:   "meta <key>",
	Short: "Show a blob's size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := parseKey(args[0])
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		m, err := store.Meta(k)
		if err != nil {
			return err
		}

		p, err := printer()
		if err != nil {
			return err
		}
		return p.Print(metaResult{
			Key:       k.String(),
			SizeBytes: m.Size,
			Size:      humanize.Bytes(m.Size),
		})
	},
}
