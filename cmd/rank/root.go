package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/config"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/llm"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/monitoring"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/resilience"
)

var version = "dev"

// app is the state shared by every subcommand once the root pre-run has loaded config
type app struct {
	configPath string
	debug      bool

	cfg     *config.Config
	logger  *monitoring.Logger
	factory *llm.Factory
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank candidates against weighted criteria",
		Long: `Rank candidates against weighted criteria.

Rankings come from the configured language model when OPENAI_API_KEY is set.
Any failure of the external service falls back to a deterministic heuristic,
so a ranking is always produced for valid input.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Optional YAML config file")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.load(cmd)
	}

	cmd.AddCommand(newRankCommand(a))
	cmd.AddCommand(newScoreCommand(a))
	cmd.AddCommand(newTemplatesCommand())
	cmd.AddCommand(newStatusCommand(a))

	return cmd
}

// load reads config and builds the logger and client factory. Logs go to
// stderr so stdout stays machine readable.
func (a *app) load(cmd *cobra.Command) error {
	cfg, errs := config.Load(a.configPath)
	if len(errs) > 0 {
		return fmt.Errorf("loading config: %w", errors.Join(errs...))
	}

	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	a.cfg = cfg
	a.logger = monitoring.NewLoggerTo(cmd.ErrOrStderr(), level)
	a.factory = llm.NewFactory(llm.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		Timeout:     cfg.OpenAITimeout,
		HTTPClient:  resilience.NewHTTPClient(resilience.HTTPClientConfig{MaxIdle: 2, MaxActive: 2}),
	}, a.logger)
	return nil
}

func (a *app) ranker() *ranking.Ranker {
	return ranking.NewRanker(a.factory.New,
		ranking.WithNormalizer(ranking.NewNormalizer(a.cfg.MaxCandidates, a.cfg.CandidateDelimiters)),
		ranking.WithLogger(a.logger.Logger),
	)
}

func execute() error {
	return newRootCommand().Execute()
}
