package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rerate",
	Short: "Re-rating signal engine for equity watch lists",
	Long: `Rerate CLI

Daily re-rating engine: tracks analyst estimate revisions, prices the
revision-vs-price gap, and surfaces at most one dominant signal card per
instrument per day.

Usage:
  go run ./cmd/rerate [command]

Examples:
  go run ./cmd/rerate check AAPL
  go run ./cmd/rerate feed
  go run ./cmd/rerate api
  go run ./cmd/rerate worker`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
