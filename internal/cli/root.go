// Package cli implements the watersafe command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// NewRootCmd builds the watersafe command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "watersafe",
		Short: "Drinking water safety verdicts for US addresses",
		Long: `watersafe resolves a postal address or GPS point to the public water
system that serves it, then rates that system GREEN, AMBER, or RED from
its EPA compliance history.

Configuration is read from the environment (and an optional .env file).`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newViolationsCmd(),
		newImportCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "watersafe %s\n", Version)
		},
	}
}
