// Package cmd defines the monitor's command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eudr-monitor",
		Short: "Watches EU deforestation regulation pages for content changes.",
		Long: `eudr-monitor polls a fixed catalog of regulatory and guidance pages,
fingerprints each response body, and raises an alert whenever a page's
content differs from the last known baseline.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSweepCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
