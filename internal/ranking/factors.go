package ranking

import (
	"fmt"
	"math"
)

// ReasonWeighted marks results produced by the weighted factor scorer
const ReasonWeighted = "weighted"

// ItemFactors holds per-candidate factor data supplied by a content pipeline
type ItemFactors struct {
	Metrics             map[string]float64 `json:"metrics"`
	AgeDays             float64            `json:"ageDays"`
	SourceCredibility   float64            `json:"sourceCredibility"`
	CrossReferenceCount float64            `json:"crossReferenceCount"`
	Penalties           float64            `json:"penalties"`
}

// FactorCriteria configures the weighted factor formula
type FactorCriteria struct {
	Weights map[string]float64 `json:"weights"`
	// Lambda is the freshness decay rate per day
	Lambda float64 `json:"lambda"`
	// Alpha weighs source credibility
	Alpha float64 `json:"alpha"`
	// Beta weighs cross references
	Beta float64 `json:"beta"`
}

// FactorItem pairs a candidate with its factors
type FactorItem struct {
	Candidate string `json:"candidate"`
	ItemFactors
}

// Validate checks the factor ranges
func (f ItemFactors) Validate() error {
	switch {
	case !finite(f.AgeDays) || f.AgeDays < 0:
		return fmt.Errorf("%w: ageDays must be >= 0", ErrInvalidFactors)
	case !finite(f.SourceCredibility) || f.SourceCredibility < 0 || f.SourceCredibility > 1:
		return fmt.Errorf("%w: sourceCredibility must be within [0,1]", ErrInvalidFactors)
	case !finite(f.CrossReferenceCount) || f.CrossReferenceCount < 0:
		return fmt.Errorf("%w: crossReferenceCount must be >= 0", ErrInvalidFactors)
	case !finite(f.Penalties) || f.Penalties < 0:
		return fmt.Errorf("%w: penalties must be >= 0", ErrInvalidFactors)
	}
	for k, v := range f.Metrics {
		if !finite(v) {
			return fmt.Errorf("%w: metric %q is not finite", ErrInvalidFactors, k)
		}
	}
	return nil
}

// Validate checks the criteria ranges
func (c FactorCriteria) Validate() error {
	for _, v := range []float64{c.Lambda, c.Alpha, c.Beta} {
		if !finite(v) {
			return fmt.Errorf("%w: lambda, alpha and beta must be finite", ErrInvalidFactors)
		}
	}
	if c.Lambda < 0 {
		return fmt.Errorf("%w: lambda must be >= 0", ErrInvalidFactors)
	}
	for k, v := range c.Weights {
		if !finite(v) {
			return fmt.Errorf("%w: weight %q is not finite", ErrInvalidFactors, k)
		}
	}
	return nil
}

// BaseScore sums weight*metric over the weight keys; a missing metric counts as 0
func BaseScore(metrics, weights map[string]float64) float64 {
	score := 0.0
	for _, k := range Criteria(weights).Keys() {
		score += weights[k] * metrics[k]
	}
	return score
}

// Freshness computes exp(-lambda*ageDays)
func Freshness(lambda, ageDays float64) float64 {
	return math.Exp(-lambda * ageDays)
}

// Trust computes min(1, alpha*credibility + beta*crossRefs)
func Trust(alpha, beta, credibility, crossRefs float64) float64 {
	return math.Min(1, alpha*credibility+beta*crossRefs)
}

// FinalScore is base*freshness*trust - penalties. The result is unclamped and may be negative.
func FinalScore(f ItemFactors, c FactorCriteria) float64 {
	base := BaseScore(f.Metrics, c.Weights)
	freshness := Freshness(c.Lambda, f.AgeDays)
	trust := Trust(c.Alpha, c.Beta, f.SourceCredibility, f.CrossReferenceCount)
	return base*freshness*trust - f.Penalties
}

// ScoreItems validates and scores every item, returning results sorted by score descending
func ScoreItems(items []FactorItem, c FactorCriteria) ([]Result, error) {
	if len(items) == 0 {
		return nil, ErrNoCandidates
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(items))
	for i, item := range items {
		if item.Candidate == "" {
			return nil, fmt.Errorf("%w: item %d has no candidate", ErrInvalidFactors, i)
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Candidate, err)
		}
		results = append(results, Result{
			Candidate: item.Candidate,
			Score:     FinalScore(item.ItemFactors, c),
			Reason:    ReasonWeighted,
		})
	}

	SortResults(results)
	return results, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
