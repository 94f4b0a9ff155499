package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configFiles []string

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "photowall",
	Short:   "Photo-sharing server backed by presigned bucket uploads",
	Long: `Photowall is a small photo-sharing server for events. Guests ask it
for one-shot upload authorizations and send their photo bytes straight
to the storage bucket; the server only brokers authorizations, lists
the gallery, and handles deletes.`,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil,
		"config file path(s), later files override earlier ones (default: ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
