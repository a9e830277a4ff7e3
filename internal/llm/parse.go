package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

// ParseRanking validates the text returned by the model and converts it into
// results. Only requested candidates are kept, each at most once, in the order
// the model listed them. Scores are clamped to 0..100.
func ParseRanking(text string, candidates []string) ([]ranking.Result, error) {
	doc, err := decodeDocument(text)
	if err != nil {
		return nil, err
	}

	rawResults, ok := doc["results"]
	if !ok {
		return nil, fmt.Errorf("%w: missing results", ranking.ErrMalformedResponse)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawResults, &entries); err != nil {
		return nil, fmt.Errorf("%w: results is not an array", ranking.ErrMalformedResponse)
	}

	requested := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		requested[c] = struct{}{}
	}

	seen := make(map[string]struct{}, len(entries))
	results := make([]ranking.Result, 0, len(entries))
	for _, raw := range entries {
		var entry map[string]any
		if err := decodeEntry(raw, &entry); err != nil || entry == nil {
			continue
		}

		candidate := scalarString(entry["candidate"])
		if candidate == "" {
			// older prompts used "item"
			candidate = scalarString(entry["item"])
		}
		if candidate == "" {
			continue
		}
		if _, ok := requested[candidate]; !ok {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}

		results = append(results, ranking.Result{
			Candidate: candidate,
			Score:     ranking.ClampScore(scoreValue(entry["score"])),
			Reason:    scalarString(entry["reason"]),
		})
	}
	return results, nil
}

func decodeDocument(text string) (map[string]json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty content", ranking.ErrMalformedResponse)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err == nil && doc != nil {
		return doc, nil
	}

	obj, ok := firstObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in content", ranking.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(obj), &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: embedded object does not decode", ranking.ErrMalformedResponse)
	}
	return doc, nil
}

// firstObject returns the first balanced {...} span, skipping braces inside strings
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// decodeEntry keeps numbers as json.Number so an out of range score is
// clamped rather than failing the whole entry
func decodeEntry(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func scoreValue(v any) float64 {
	switch n := v.(type) {
	case json.Number:
		return parseScore(n.String())
	case float64:
		return n
	case string:
		return parseScore(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// parseScore keeps the infinite result of an out of range number; other
// parse failures score 0
func parseScore(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return f
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		if f, err := s.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
