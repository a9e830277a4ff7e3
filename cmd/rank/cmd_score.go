package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/types"
)

func newScoreCommand(a *app) *cobra.Command {
	var file string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score items with the weighted factor formula",
		Long: `Score items with the weighted factor formula.

The input file holds {"criteria":{"weights":{},"lambda":0,"alpha":0,"beta":0},
"items":[{"candidate":"","metrics":{},"ageDays":0,"sourceCredibility":0,
"crossReferenceCount":0,"penalties":0}]}. Use "-" to read standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readScoreRequest(cmd, file)
			if err != nil {
				return err
			}

			results, err := ranking.ScoreItems(req.Items, req.Criteria)
			if err != nil {
				return fmt.Errorf("scoring: %w", err)
			}
			a.logger.Debug("Scored items", "items", len(results))

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with criteria and items, or - for stdin")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the results as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readScoreRequest(cmd *cobra.Command, path string) (*types.ScoreRequest, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var req types.ScoreRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &req, nil
}
