package ranking

import "math"

const (
	// ReasonHeuristic marks results of a full heuristic ranking
	ReasonHeuristic = "heuristic"
	// ReasonFallback marks candidates the external service did not score
	ReasonFallback = "fallback"

	heuristicModulus = 101
)

// HeuristicScore is a deterministic, network-free score derived only from the
// candidate text and the criteria weights. It is not bounded to 0..100 but is
// always finite.
func HeuristicScore(candidate string, criteria Criteria) float64 {
	sum := 0
	for _, r := range candidate {
		sum += int(r)
	}
	base := float64(sum % heuristicModulus)

	weight := criteria.Sum()
	if weight == 0 {
		weight = 1
	}
	score := roundHalfUp(base * weight)
	if !finite(score) {
		// criteria that bypassed normalization can overflow
		return 0
	}
	return score
}

// HeuristicRanking scores every candidate with the heuristic, in input order
func HeuristicRanking(candidates []string, criteria Criteria) []Result {
	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{
			Candidate: c,
			Score:     HeuristicScore(c, criteria),
			Reason:    ReasonHeuristic,
			Fallback:  true,
		}
	}
	return results
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ClampScore bounds an externally sourced score to 0..100; NaN becomes 0
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return clip(score, 0, 100)
}
