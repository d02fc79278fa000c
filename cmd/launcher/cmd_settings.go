package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	launcher "github.com/modsmith/launcher"
	"github.com/modsmith/launcher/service/settings"
)

// newSettingsCmd groups the settings subcommands.
func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored launcher settings",
	}
	cmd.AddCommand(newSettingsShowCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := launcher.DefaultConfig()
			store := settings.New(afs.New(), config.SettingsLocation)
			current := store.Load(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "nickname:      %s\n", current.Nickname)
			fmt.Fprintf(cmd.OutOrStdout(), "manifest url:  %s\n", current.ManifestURL)
			fmt.Fprintf(cmd.OutOrStdout(), "max ram:       %s\n", current.MaxRAM)
			fmt.Fprintf(cmd.OutOrStdout(), "installed rev: %d\n", current.InstalledRevision)
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var nickname string
	var manifestURL string
	var maxRAM string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := launcher.DefaultConfig()
			store := settings.New(afs.New(), config.SettingsLocation)
			current := store.Load(cmd.Context())
			if nickname == "" {
				nickname = current.Nickname
			}
			var options []settings.Option
			if manifestURL != "" {
				options = append(options, settings.WithManifestURL(manifestURL))
			}
			if maxRAM != "" {
				options = append(options, settings.WithMaxRAM(maxRAM))
			}
			if !store.Save(cmd.Context(), nickname, options...) {
				return fmt.Errorf("failed to save settings (a nickname is required)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "settings saved")
			return nil
		},
	}

	cmd.Flags().StringVarP(&nickname, "nickname", "n", "", "player nickname")
	cmd.Flags().StringVar(&manifestURL, "manifest-url", "", "remote manifest locator")
	cmd.Flags().StringVar(&maxRAM, "max-ram", "", "maximum game memory, e.g. 4G or 512M")
	return cmd
}
