package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hydrate",
		Short: "hydrate - placeholder materialization for cloud-synced trees",
		Long: `hydrate walks a directory tree and materializes every placeholder entry
it finds, cycling until a full traversal discovers nothing left to do.

Sync clients such as odrive stand in for cloud-stored folders with small
placeholder entries (".cloudf" by convention) that cost no disk space until
opened. hydrate opens them all: it scans the tree, asks the platform to
materialize each placeholder, waits for the placeholder to disappear, and
re-scans - because materializing a folder can reveal new placeholders
nested beneath it.

Entries that never materialize time out, are reported, and are retried on
the next cycle; an exclusion pattern skips entries permanently.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRunCommand(version))
	rootCmd.AddCommand(newScanCommand())

	return rootCmd
}
