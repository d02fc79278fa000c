package main

import (
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// newRootCmd creates the root launcher command with all subcommands
// attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "launcher",
		Short:         "Modded game client installer and launcher",
		Long:          "launcher installs or updates the configured game version, mod loader\nand content bundle, then starts the game for the configured player.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("launcher {{.Version}}\n")

	cmd.AddCommand(
		newRunCmd(),
		newSettingsCmd(),
		newVersionsCmd(),
	)

	return cmd
}
