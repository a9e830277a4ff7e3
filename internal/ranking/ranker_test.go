package ranking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRanker struct {
	results []Result
	err     error
	panics  bool
	calls   int
	gotCrit Criteria
	gotCand []string
}

func (f *fakeRanker) RequestRanking(_ context.Context, criteria Criteria, candidates []string) ([]Result, error) {
	f.calls++
	f.gotCrit = criteria
	f.gotCand = candidates
	if f.panics {
		panic("boom")
	}
	return f.results, f.err
}

type reasonedError struct{ reason string }

func (e reasonedError) Error() string          { return e.reason }
func (e reasonedError) FallbackReason() string { return e.reason }

func factoryFor(r ExternalRanker) ClientFactory {
	return func() (ExternalRanker, error) { return r, nil }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRanker_FallbackReasons(t *testing.T) {
	tests := []struct {
		name    string
		factory ClientFactory
		reason  string
	}{
		{
			name:    "nil factory",
			factory: nil,
			reason:  FallbackReasonUnavailable,
		},
		{
			name:    "factory reports unavailable",
			factory: func() (ExternalRanker, error) { return nil, ErrServiceUnavailable },
			reason:  FallbackReasonUnavailable,
		},
		{
			name:    "factory returns nil client",
			factory: func() (ExternalRanker, error) { return nil, nil },
			reason:  FallbackReasonUnavailable,
		},
		{
			name:    "non-success status",
			factory: factoryFor(&fakeRanker{err: &RequestFailedError{Status: 503}}),
			reason:  FallbackReasonRequest,
		},
		{
			name:    "malformed response",
			factory: factoryFor(&fakeRanker{err: fmt.Errorf("decode: %w", ErrMalformedResponse)}),
			reason:  FallbackReasonMalformed,
		},
		{
			name:    "canceled context",
			factory: factoryFor(&fakeRanker{err: context.Canceled}),
			reason:  FallbackReasonCanceled,
		},
		{
			name:    "deadline exceeded",
			factory: factoryFor(&fakeRanker{err: context.DeadlineExceeded}),
			reason:  FallbackReasonCanceled,
		},
		{
			name:    "transport error",
			factory: factoryFor(&fakeRanker{err: errors.New("connection reset")}),
			reason:  FallbackReasonTransport,
		},
		{
			name:    "client panics",
			factory: factoryFor(&fakeRanker{panics: true}),
			reason:  FallbackReasonTransport,
		},
		{
			name:    "error names its own reason",
			factory: factoryFor(&fakeRanker{err: reasonedError{reason: "circuit_open"}}),
			reason:  "circuit_open",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRanker(tt.factory, WithLogger(quietLogger()))
			criteria := Criteria{"w": 1}

			ranking, err := r.Rank(context.Background(), criteria, []string{"A", "B"})
			require.NoError(t, err)

			assert.Equal(t, SourceHeuristic, ranking.Source)
			assert.Equal(t, tt.reason, ranking.FallbackReason)
			require.Len(t, ranking.Results, 2)
			for _, res := range ranking.Results {
				assert.Equal(t, HeuristicScore(res.Candidate, criteria), res.Score)
				assert.Equal(t, ReasonHeuristic, res.Reason)
				assert.True(t, res.Fallback)
			}
		})
	}
}

func TestRanker_WorkedExampleWithoutService(t *testing.T) {
	r := NewRanker(nil, WithLogger(quietLogger()))

	ranking, err := r.Rank(context.Background(), map[string]any{"clarity": 2, "impact": 3}, []any{"A", "B", "A"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, ranking.Candidates)
	assert.Equal(t, Criteria{"clarity": 2, "impact": 3}, ranking.Criteria)
	assert.Equal(t, []Result{
		{Candidate: "B", Score: 330, Reason: ReasonHeuristic, Fallback: true},
		{Candidate: "A", Score: 325, Reason: ReasonHeuristic, Fallback: true},
	}, ranking.Results)
}

func TestRanker_FullExternal(t *testing.T) {
	fake := &fakeRanker{results: []Result{
		{Candidate: "B", Score: 40, Reason: "solid"},
		{Candidate: "A", Score: 95, Reason: "great"},
	}}
	r := NewRanker(factoryFor(fake), WithLogger(quietLogger()))

	ranking, err := r.Rank(context.Background(), `{"impact": 5}`, "A, B")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, []string{"A", "B"}, fake.gotCand)
	assert.Equal(t, Criteria{"impact": 5}, fake.gotCrit)
	assert.Equal(t, SourceExternal, ranking.Source)
	assert.Empty(t, ranking.FallbackReason)
	assert.Equal(t, []Result{
		{Candidate: "A", Score: 95, Reason: "great"},
		{Candidate: "B", Score: 40, Reason: "solid"},
	}, ranking.Results)
}

func TestRanker_PartialExternal(t *testing.T) {
	fake := &fakeRanker{results: []Result{{Candidate: "A", Score: 100, Reason: "x"}}}
	r := NewRanker(factoryFor(fake), WithLogger(quietLogger()))

	ranking, err := r.Rank(context.Background(), Criteria{"w": 1}, []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, SourcePartial, ranking.Source)
	assert.Equal(t, []Result{
		{Candidate: "A", Score: 100, Reason: "x"},
		{Candidate: "B", Score: 66, Reason: ReasonFallback, Fallback: true},
	}, ranking.Results)
}

func TestRanker_EmptyExternalResultFallsBackPerCandidate(t *testing.T) {
	fake := &fakeRanker{results: []Result{}}
	r := NewRanker(factoryFor(fake), WithLogger(quietLogger()))

	ranking, err := r.Rank(context.Background(), Criteria{"w": 1}, []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, SourcePartial, ranking.Source)
	require.Len(t, ranking.Results, 2)
	for _, res := range ranking.Results {
		assert.Equal(t, ReasonFallback, res.Reason)
		assert.True(t, res.Fallback)
	}
}

func TestRanker_InputErrorsSkipExternal(t *testing.T) {
	fake := &fakeRanker{}
	r := NewRanker(factoryFor(fake), WithLogger(quietLogger()))

	_, err := r.Rank(context.Background(), map[string]any{}, []string{"A"})
	assert.ErrorIs(t, err, ErrInvalidCriteria)

	_, err = r.Rank(context.Background(), Criteria{"w": 1}, " , ,")
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = r.Rank(context.Background(), map[string]any{"a": math.MaxFloat64, "b": math.MaxFloat64}, []string{"A", "e"})
	assert.ErrorIs(t, err, ErrInvalidCriteria)

	assert.Zero(t, fake.calls)
}

func TestRanker_ResultsCoverEveryCandidateSorted(t *testing.T) {
	r := NewRanker(nil, WithLogger(quietLogger()), WithNormalizer(NewNormalizer(5, "")))

	ranking, err := r.Rank(context.Background(), Criteria{"a": 1.5, "b": 2}, "x,y,z,alpha,beta,gamma,delta")
	require.NoError(t, err)

	require.Len(t, ranking.Candidates, 5)
	require.Len(t, ranking.Results, 5)
	seen := map[string]bool{}
	for i, res := range ranking.Results {
		seen[res.Candidate] = true
		if i > 0 {
			assert.GreaterOrEqual(t, ranking.Results[i-1].Score, res.Score)
		}
	}
	for _, c := range ranking.Candidates {
		assert.True(t, seen[c], c)
	}
}
