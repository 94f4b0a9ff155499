package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/photowall/photowall/guest"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	serverURL   string
	ledgerPath  string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "photowall-cli",
	Version: version,
	Short:   "Guest client for a photowall server",
	Long: `Photowall CLI - upload photos to an event, browse the shared
gallery, and remove photos you no longer want up.

Photos uploaded from this machine are remembered in a local ledger so
the gallery can mark them as yours. The ledger is a hint for display,
not an access control: anyone can delete any photo.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.photowall/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "event profile to use (default: the default profile)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server URL (overrides profile, env: PHOTOWALL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "ownership ledger path (default: ~/.photowall/ledger.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return guest.DefaultConfigPath()
}

// resolveEndpoint picks the server URL: flag > env > profile > default.
func resolveEndpoint() (string, error) {
	if serverURL != "" {
		return serverURL, nil
	}
	if env := os.Getenv("PHOTOWALL_SERVER"); env != "" {
		return env, nil
	}

	cfg, err := guest.LoadConfigFile(getConfigPath())
	if err != nil {
		// A missing default config file just means no profiles yet; an
		// explicitly named one must exist.
		if cfgFile != "" {
			return "", err
		}
		return guest.DefaultEndpoint, nil
	}

	profile, err := cfg.GetProfile(profileName)
	if err != nil {
		if profileName != "" {
			return "", err
		}
		return guest.DefaultEndpoint, nil
	}

	return profile.Endpoint, nil
}

func openLedger() *guest.Ledger {
	path := ledgerPath
	if path == "" {
		path = guest.DefaultLedgerPath()
	}
	return guest.OpenLedger(path)
}

// getClient creates a configured client with the ownership ledger
// attached. The caller owns closing the returned ledger.
func getClient() (*guest.Client, *guest.Ledger, error) {
	endpoint, err := resolveEndpoint()
	if err != nil {
		return nil, nil, err
	}

	ledger := openLedger()
	client, err := guest.New(endpoint, guest.WithLedger(ledger))
	if err != nil {
		_ = ledger.Close()
		return nil, nil, err
	}

	return client, ledger, nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() guest.Formatter {
	return guest.NewFormatter(jsonOutput, quiet)
}
