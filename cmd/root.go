// Package cmd defines and implements the CLI commands for the animefeed
// executable.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animefeed",
		Short: "Crawls a torrent listing site and publishes an Atom feed",
		Long: `animefeed logs into a paginated torrent listing site, extracts the
newest items, mirrors their assets into object storage and publishes an
Atom feed referencing the mirrored copies. Each invocation is one
complete batch run.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default reads ANIMEFEED_* environment)")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() error {
	return newRootCmd().Execute()
}
