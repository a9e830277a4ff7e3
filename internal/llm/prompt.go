package llm

import (
	"encoding/json"
	"fmt"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

const systemPrompt = `You are a ranking engine. Return JSON only:
{"results":[{"candidate":"<candidate>","score":<0..100>,"reason":"<short>"}...]}
- Use the weights in "criteria" to score every candidate from 0 to 100.
- Higher is better. Sort results by score, highest first.
- Echo each candidate string exactly as given. One short reason per candidate.`

type rankingPrompt struct {
	Criteria   ranking.Criteria `json:"criteria"`
	Candidates []string         `json:"candidates"`
}

// userPrompt encodes the request payload sent as the user message
func userPrompt(criteria ranking.Criteria, candidates []string) (string, error) {
	b, err := json.Marshal(rankingPrompt{Criteria: criteria, Candidates: candidates})
	if err != nil {
		return "", fmt.Errorf("encode ranking prompt: %w", err)
	}
	return string(b), nil
}
