package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExternalRanker delegates scoring to an outside ranking service
type ExternalRanker interface {
	RequestRanking(ctx context.Context, criteria Criteria, candidates []string) ([]Result, error)
}

// ClientFactory builds the external ranker for one request. It must return
// ErrServiceUnavailable rather than fail when the service is not configured.
type ClientFactory func() (ExternalRanker, error)

// Ranker normalizes input, attempts external ranking and falls back to the
// heuristic on any external failure. It holds no per-request state.
type Ranker struct {
	normalizer Normalizer
	newClient  ClientFactory
	logger     *slog.Logger
}

// Option configures a Ranker
type Option func(*Ranker)

// WithNormalizer overrides the candidate limits and delimiters
func WithNormalizer(n Normalizer) Option {
	return func(r *Ranker) { r.normalizer = n }
}

// WithLogger sets the logger used to report fallbacks
func WithLogger(l *slog.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRanker creates a ranker. A nil factory means the external service is never used.
func NewRanker(factory ClientFactory, opts ...Option) *Ranker {
	r := &Ranker{
		normalizer: NewNormalizer(0, ""),
		newClient:  factory,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalizer returns the normalizer in use
func (r *Ranker) Normalizer() Normalizer {
	return r.normalizer
}

// Rank scores the candidates against the criteria. Only input normalization
// errors are returned; external ranking failures produce a heuristic ranking.
func (r *Ranker) Rank(ctx context.Context, rawCriteria, rawCandidates any) (*Ranking, error) {
	criteria, err := NormalizeCriteria(rawCriteria)
	if err != nil {
		return nil, err
	}
	candidates, err := r.normalizer.NormalizeCandidates(rawCandidates)
	if err != nil {
		return nil, err
	}
	return r.RankNormalized(ctx, criteria, candidates), nil
}

// RankNormalized runs the scoring step on already normalized input
func (r *Ranker) RankNormalized(ctx context.Context, criteria Criteria, candidates []string) *Ranking {
	start := time.Now()
	outcome := r.scoreExternally(ctx, criteria, candidates)
	elapsed := time.Since(start)

	ranking := r.resolve(outcome, criteria, candidates)
	ranking.ExternalDuration = elapsed
	SortResults(ranking.Results)
	return ranking
}

// externalOutcome is either externalSuccess or externalFailure
type externalOutcome interface {
	externalOutcome()
}

type externalSuccess struct {
	results []Result
}

type externalFailure struct {
	err error
}

func (externalSuccess) externalOutcome() {}
func (externalFailure) externalOutcome() {}

func (r *Ranker) scoreExternally(ctx context.Context, criteria Criteria, candidates []string) (outcome externalOutcome) {
	defer func() {
		if p := recover(); p != nil {
			outcome = externalFailure{err: fmt.Errorf("external ranker panicked: %v", p)}
		}
	}()

	if r.newClient == nil {
		return externalFailure{err: ErrServiceUnavailable}
	}
	client, err := r.newClient()
	if err != nil {
		return externalFailure{err: err}
	}
	if client == nil {
		return externalFailure{err: ErrServiceUnavailable}
	}

	results, err := client.RequestRanking(ctx, criteria, candidates)
	if err != nil {
		return externalFailure{err: err}
	}
	return externalSuccess{results: results}
}

func (r *Ranker) resolve(outcome externalOutcome, criteria Criteria, candidates []string) *Ranking {
	ranking := &Ranking{Criteria: criteria, Candidates: candidates}

	switch o := outcome.(type) {
	case externalSuccess:
		ranking.Results = Merge(o.results, candidates, criteria)
		ranking.Source = SourceExternal
		if len(ranking.Results) > len(o.results) {
			ranking.Source = SourcePartial
		}
	case externalFailure:
		reason := ClassifyFailure(o.err)
		level := slog.LevelWarn
		if reason == FallbackReasonUnavailable {
			level = slog.LevelDebug
		}
		r.logger.Log(context.Background(), level, "External ranking failed, using heuristic",
			"reason", reason,
			"error", o.err,
			"candidates", len(candidates),
		)
		ranking.Results = HeuristicRanking(candidates, criteria)
		ranking.Source = SourceHeuristic
		ranking.FallbackReason = reason
	}
	return ranking
}
