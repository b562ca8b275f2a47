package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/blobstore/blob"
)

var getCmd = &cobra.Command{
	Use:   "get <key> <file>",
	Short: "Write a blob's contents to a file",
	Args:  cobra.ExactArgs(2),
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

		data, err := blob.GetOwned(store, k, blob.All())
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", args[1], err)
		}
		fmt.Printf("wrote %d bytes to %s\n", len(data), args[1])
		return nil
	},
}
