package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// containsResult renders a presence check for table/json/yaml output.
type containsResult struct {
	Key     string `json:"key" yaml:"key"`
	Present bool   `json:"present" yaml:"present"`
}

func (c containsResult) Headers() []string { return []string{"Key", "Present"} }

func (c containsResult) Rows() [][]string {
	return [][]string{{c.Key, fmt.Sprintf("%t", c.Present)}}
}

var containsCmd = &cobra.Command{
	Use:   "contains <key>",
	Short: "Check whether a blob exists",
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

		ok, err := store.Contains(k)
		if err != nil {
			return err
		}

		p, err := printer()
		if err != nil {
			return err
		}
		if err := p.Print(containsResult{Key: k.String(), Present: ok}); err != nil {
			return err
		}
		if !ok {
			os.Exit(1)
		}
		return nil
	},
}
