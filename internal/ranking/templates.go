package ranking

import "sort"

// Template is a named criteria preset
type Template struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Criteria    Criteria `json:"criteria"`
}

// DefaultCriteria is offered to callers that have not chosen weights yet
var DefaultCriteria = Criteria{
	"clarity":    4,
	"creativity": 3,
	"impact":     5,
}

var templates = map[string]Template{
	"balanced": {
		Name:        "balanced",
		Label:       "Balanced",
		Description: "Equal focus on clarity, creativity, and impact.",
		Criteria:    Criteria{"clarity": 4, "creativity": 4, "impact": 4},
	},
	"storytelling": {
		Name:        "storytelling",
		Label:       "Storytelling",
		Description: "Higher weight for creativity and narrative strength.",
		Criteria:    Criteria{"clarity": 3, "creativity": 5, "impact": 4},
	},
	"data_driven": {
		Name:        "data_driven",
		Label:       "Data Driven",
		Description: "Prioritise clarity and measurable impact.",
		Criteria:    Criteria{"clarity": 5, "creativity": 2, "impact": 5},
	},
}

// LookupTemplate returns a copy of the named preset
func LookupTemplate(name string) (Template, bool) {
	t, ok := templates[name]
	if !ok {
		return Template{}, false
	}
	t.Criteria = t.Criteria.Clone()
	return t, true
}

// Templates lists every preset sorted by name
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for name := range templates {
		t, _ := LookupTemplate(name)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
