package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydlexius/coverlens/internal/version"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{
					"version": version.Version,
					"commit":  version.Commit,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "coverlens %s (%s)\n", version.Version, version.Commit)
			return nil
		},
	}
}
