package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

const maxCandidateWidth = 40

type rankOptions struct {
	criteria   string
	candidates string
	template   string
	jsonOutput bool
}

func newRankCommand(a *app) *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a list of candidates",
		Long: `Rank a list of candidates against weighted criteria.

Criteria are a JSON object of numeric weights. Candidates are a JSON array or
a string split on the configured delimiters. When --criteria is omitted the
--template preset is used, and without either the default criteria apply.`,
		Example: `  rank rank --criteria '{"clarity":2,"impact":3}' --candidates 'A,B'
  rank rank --template storytelling --candidates '["pitch one","pitch two"]' --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.criteria, "criteria", "", "Criteria weights as a JSON object")
	cmd.Flags().StringVar(&opts.candidates, "candidates", "", "Candidates as a JSON array or delimited string")
	cmd.Flags().StringVar(&opts.template, "template", "", "Criteria preset used when --criteria is omitted")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the ranking as JSON")

	return cmd
}

func runRank(cmd *cobra.Command, a *app, opts *rankOptions) error {
	var criteria any = ranking.DefaultCriteria.Clone()
	switch {
	case opts.criteria != "":
		criteria = opts.criteria
	case opts.template != "":
		t, ok := ranking.LookupTemplate(opts.template)
		if !ok {
			return fmt.Errorf("unknown template %q", opts.template)
		}
		criteria = t.Criteria
	}

	ctx := cmd.Context()
	start := time.Now()
	result, err := a.ranker().Rank(ctx, criteria, opts.candidates)
	if err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	a.logger.RankingLogger(result, time.Since(start))

	if opts.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return writeRanking(cmd.OutOrStdout(), result)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeRanking prints a fixed width table. Candidate widths are measured in
// terminal cells so wide scripts stay aligned.
func writeRanking(w io.Writer, r *ranking.Ranking) error {
	source := string(r.Source)
	if r.FallbackReason != "" {
		source += " (" + r.FallbackReason + ")"
	}
	if _, err := fmt.Fprintf(w, "source: %s\n", source); err != nil {
		return err
	}
	return writeResults(w, r.Results)
}

func writeResults(w io.Writer, results []ranking.Result) error {
	width := len("CANDIDATE")
	for _, res := range results {
		width = max(width, min(runewidth.StringWidth(res.Candidate), maxCandidateWidth))
	}

	if _, err := fmt.Fprintf(w, "%-4s  %s  %10s  %s\n", "#", runewidth.FillRight("CANDIDATE", width), "SCORE", "REASON"); err != nil {
		return err
	}
	for i, res := range results {
		name := runewidth.FillRight(runewidth.Truncate(res.Candidate, width, "…"), width)
		reason := res.Reason
		if res.Fallback {
			reason += " *"
		}
		if _, err := fmt.Fprintf(w, "%-4s  %s  %10s  %s\n", strconv.Itoa(i+1), name, formatScore(res.Score), reason); err != nil {
			return err
		}
	}
	return nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
