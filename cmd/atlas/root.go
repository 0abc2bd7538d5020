package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - multi-provider cloud cost aggregation and budget engine",
	Long: `Atlas aggregates billing data across AWS, Azure, GCP, and NCP accounts
into one normalized view and evaluates budget thresholds against it.

It provides:
  - Concurrent per-account cost collection with partial-failure tolerance
  - Currency normalization into a single display currency
  - Free-tier quota tracking per provider
  - Consolidated and per-account budget modes with alert thresholds
  - An HTTP API, Prometheus metrics, and scheduled alert sweeps`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
