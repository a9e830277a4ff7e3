package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

func newTemplatesCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List criteria presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates := ranking.Templates()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), templates)
			}

			out := cmd.OutOrStdout()
			for _, t := range templates {
				if _, err := fmt.Fprintf(out, "%-14s %s\n", t.Name, formatCriteria(t.Criteria)); err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "%-14s %s\n", "", t.Description); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(out, "%-14s %s\n", "(default)", formatCriteria(ranking.DefaultCriteria))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print templates as JSON")
	return cmd
}

func formatCriteria(c ranking.Criteria) string {
	parts := make([]string, 0, len(c))
	for _, k := range c.Keys() {
		parts = append(parts, k+"="+formatScore(c[k]))
	}
	return strings.Join(parts, " ")
}
