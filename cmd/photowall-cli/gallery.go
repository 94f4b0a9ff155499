package main

import (
	"os"

	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:     "gallery",
	Aliases: []string{"list", "ls"},
	Short:   "List every photo on the wall",
	Long: `List every photo in the shared gallery, newest first as the server
returns them. Photos uploaded from this machine are marked with an
asterisk (*).`,
	Args: cobra.NoArgs,
	RunE: runGallery,
}

func runGallery(cmd *cobra.Command, _ []string) error {
	client, ledger, err := getClient()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	photos, err := client.Gallery(cmd.Context())
	if err != nil {
		_ = getFormatter().FormatError(os.Stderr, err)
		return err
	}

	owned := make(map[string]bool)
	for _, key := range ledger.ListOwned(cmd.Context()) {
		owned[key] = true
	}

	return getFormatter().FormatGallery(os.Stdout, photos, owned)
}
