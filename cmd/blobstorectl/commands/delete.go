package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/blobstore/blob"
	"github.com/marmos91/blobstore/internal/cli/prompt"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := parseKey(args[0])
		if err != nil {
			return err
		}

		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("delete blob %s", k), deleteForce)
		if err != nil {
			if prompt.IsAborted(err) {
				return nil
			}
			return err
		}
		if !ok {
			return nil
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(k, blob.Discard()); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", k)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip the confirmation prompt")
}
