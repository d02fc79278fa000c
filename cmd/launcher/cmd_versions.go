package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	launcher "github.com/modsmith/launcher"
	"github.com/modsmith/launcher/service/minecraft"
)

// newVersionsCmd lists installed game versions under the install root.
func newVersionsCmd() *cobra.Command {
	var installRoot string

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List installed game versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := installRoot
			if root == "" {
				root = launcher.DefaultInstallRoot()
			}
			inventory := minecraft.NewInventory(afs.New())
			versions, err := inventory.List(cmd.Context(), root)
			if err != nil {
				return fmt.Errorf("failed to list versions: %w", err)
			}
			if len(versions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no versions installed")
				return nil
			}
			for _, v := range versions {
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", v.ID, v.Type)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&installRoot, "root", "", "installation root directory")
	return cmd
}
