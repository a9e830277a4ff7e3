package ranking

import (
	"sort"
	"time"
)

// Criteria maps a criterion name to its weight
type Criteria map[string]float64

// Keys returns the criterion names in sorted order
func (c Criteria) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sum adds up all weights in key order so repeated calls agree bit for bit
func (c Criteria) Sum() float64 {
	s := 0.0
	for _, k := range c.Keys() {
		s += c[k]
	}
	return s
}

// Clone returns an independent copy
func (c Criteria) Clone() Criteria {
	out := make(Criteria, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Result is one scored candidate
type Result struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
	Fallback  bool    `json:"fallback"`
}

// Source describes where the scores of a ranking came from
type Source string

const (
	SourceExternal  Source = "external"
	SourcePartial   Source = "partial"
	SourceHeuristic Source = "heuristic"
)

// Ranking is the outcome of a single Rank call
type Ranking struct {
	Criteria         Criteria      `json:"criteria"`
	Candidates       []string      `json:"candidates"`
	Results          []Result      `json:"results"`
	Source           Source        `json:"source"`
	FallbackReason   string        `json:"fallbackReason,omitempty"`
	ExternalDuration time.Duration `json:"-"`
}
