package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <key> [key...]",
	Aliases: []string{"rm"},
	Short:   "Delete photos from the wall",
	Long: `Delete one or more photos by key, as shown in gallery output.
Deleting a photo that is already gone still succeeds.

Examples:
  photowall-cli delete 1b9d6bcd-beach.png
  photowall-cli gallery --json | jq -r '.[] | select(.owned) | .key' | xargs photowall-cli delete`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, ledger, err := getClient()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	formatter := getFormatter()

	var failed bool
	for _, key := range args {
		if err := client.Delete(cmd.Context(), key); err != nil {
			_ = formatter.FormatError(os.Stderr, err)
			failed = true
			continue
		}
		_ = formatter.FormatDelete(os.Stdout, key)
	}

	if failed {
		return errors.New("some deletes failed")
	}

	return nil
}
