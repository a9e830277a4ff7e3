package ranking

import "sort"

// Merge appends a heuristic fallback result for every candidate missing from
// external. External entries are kept as they are, including any that do not
// match a requested candidate.
func Merge(external []Result, candidates []string, criteria Criteria) []Result {
	scored := make(map[string]struct{}, len(external))
	for _, r := range external {
		scored[r.Candidate] = struct{}{}
	}

	merged := make([]Result, 0, len(external)+len(candidates))
	merged = append(merged, external...)
	for _, c := range candidates {
		if _, ok := scored[c]; ok {
			continue
		}
		merged = append(merged, Result{
			Candidate: c,
			Score:     HeuristicScore(c, criteria),
			Reason:    ReasonFallback,
			Fallback:  true,
		})
	}
	return merged
}

// SortResults orders results by score descending. Equal scores keep their input order.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
