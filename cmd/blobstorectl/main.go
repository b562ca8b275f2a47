// Command blobstorectl is a command-line client for exercising a blob
// store backend directly: put, get, delete, meta and contains against
// whichever backend the configuration selects.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/blobstore/cmd/blobstorectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
