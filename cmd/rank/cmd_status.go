package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the external ranking service is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := "not configured (heuristic only)"
			if a.factory.Configured() {
				state = "configured"
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "external ranking: %s\nmodel: %s\n", state, a.factory.Model())
			return err
		},
	}
}
