package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/blobstore/blob"
)

var putReplaceOrCreate bool

var putCmd = &cobra.Command{
	Use:   "put <key> <file>",
	Short: "Create a blob from a file's contents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := parseKey(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		opt := blob.Create()
		if putReplaceOrCreate {
			opt = blob.ReplaceOrCreate()
		}
		if err := store.Put(k, data, opt); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes to %s\n", len(data), k)
		return nil
	},
}

func init() {
	putCmd.Flags().BoolVar(&putReplaceOrCreate, "replace-or-create", false, "overwrite the blob if it already exists instead of failing")
}
