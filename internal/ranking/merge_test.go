package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_EmptyExternalEqualsHeuristic(t *testing.T) {
	criteria := Criteria{"clarity": 2, "impact": 3}
	candidates := []string{"A", "B", "C"}

	merged := Merge(nil, candidates, criteria)
	require.Len(t, merged, len(candidates))
	for i, r := range merged {
		assert.Equal(t, candidates[i], r.Candidate)
		assert.Equal(t, HeuristicScore(candidates[i], criteria), r.Score)
		assert.Equal(t, ReasonFallback, r.Reason)
		assert.True(t, r.Fallback)
	}
}

func TestMerge_FillsMissingCandidates(t *testing.T) {
	criteria := Criteria{"w": 1}
	external := []Result{{Candidate: "A", Score: 100, Reason: "x"}}

	merged := Merge(external, []string{"A", "B"}, criteria)

	assert.Equal(t, []Result{
		{Candidate: "A", Score: 100, Reason: "x"},
		{Candidate: "B", Score: 66, Reason: ReasonFallback, Fallback: true},
	}, merged)
}

func TestMerge_ToleratesUnknownExternalCandidates(t *testing.T) {
	external := []Result{{Candidate: "ghost", Score: 10}}

	merged := Merge(external, []string{"A"}, Criteria{"w": 1})

	require.Len(t, merged, 2)
	assert.Equal(t, "ghost", merged[0].Candidate)
	assert.Equal(t, "A", merged[1].Candidate)
}

func TestMerge_MatchesByExactString(t *testing.T) {
	external := []Result{{Candidate: "a", Score: 50}}

	merged := Merge(external, []string{"A"}, Criteria{"w": 1})

	require.Len(t, merged, 2)
	assert.True(t, merged[1].Fallback)
}

func TestSortResults_StableDescending(t *testing.T) {
	results := []Result{
		{Candidate: "first", Score: 10},
		{Candidate: "top", Score: 90},
		{Candidate: "second", Score: 10},
		{Candidate: "third", Score: 10},
		{Candidate: "negative", Score: -4},
	}

	SortResults(results)

	var order []string
	for _, r := range results {
		order = append(order, r.Candidate)
	}
	assert.Equal(t, []string{"top", "first", "second", "third", "negative"}, order)
}
