package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/photowall/photowall/guest"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file> [file...]",
	Short: "Upload photos to the event gallery",
	Long: `Upload one or more photos. Files are sent in parallel, each one
directly to the storage gateway using a one-shot authorization from the
server. Empty files are rejected before any network call, and a failed
transfer is final; rerun the command to try again.

Examples:
  photowall-cli upload beach.png
  photowall-cli upload ceremony/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, ledger, err := getClient()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	// Live progress is only legible for a single file; parallel batches
	// report per-file results at the end instead.
	var onUpdate func(guest.UploadTask)
	if !jsonOutput && !quiet && len(args) == 1 {
		onUpdate = func(task guest.UploadTask) {
			if task.State == guest.TaskTransferring {
				fmt.Printf("\r%s %3d%%", task.LocalPath, task.Progress)
			}
			if task.State.Terminal() {
				fmt.Print("\r")
			}
		}
	}

	tasks, err := client.UploadAll(cmd.Context(), args, onUpdate)
	if err != nil {
		_ = getFormatter().FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	if err := formatter.FormatUpload(os.Stdout, tasks); err != nil {
		return err
	}

	for i := range tasks {
		if tasks[i].Err != nil {
			return errors.New("some uploads failed")
		}
	}

	return nil
}
