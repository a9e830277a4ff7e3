package ranking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultMaxCandidates bounds the external request size and heuristic cost
	DefaultMaxCandidates = 200
	// DefaultDelimiters splits a candidate string on comma, full-width comma and newline
	DefaultDelimiters = ",，\n"
)

// Normalizer canonicalizes raw criteria and candidate input
type Normalizer struct {
	MaxCandidates int
	Delimiters    string
}

// NewNormalizer creates a normalizer, substituting defaults for zero values
func NewNormalizer(maxCandidates int, delimiters string) Normalizer {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	if delimiters == "" {
		delimiters = DefaultDelimiters
	}
	return Normalizer{MaxCandidates: maxCandidates, Delimiters: delimiters}
}

// NormalizeCriteria accepts a mapping or a JSON-encoded object and returns
// the finite numeric weights it contains
func NormalizeCriteria(raw any) (Criteria, error) {
	weights := decodeCriteria(raw)

	out := make(Criteria, len(weights))
	for name, value := range weights {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		w, ok := toNumber(value)
		if !ok || math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		out[name] = w
	}

	if len(out) == 0 {
		return nil, ErrInvalidCriteria
	}
	if !finite(out.Sum()) {
		return nil, fmt.Errorf("%w: weights sum overflows", ErrInvalidCriteria)
	}
	return out, nil
}

func decodeCriteria(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case Criteria:
		return floatsToAny(v)
	case map[string]float64:
		return floatsToAny(v)
	case map[string]any:
		return v
	case string:
		return decodeCriteriaJSON([]byte(v))
	case []byte:
		return decodeCriteriaJSON(v)
	case json.RawMessage:
		return decodeCriteriaJSON(v)
	default:
		return nil
	}
}

// decodeCriteriaJSON never fails; undecodable input yields an empty mapping.
// A JSON string holding an encoded object is unwrapped once.
func decodeCriteriaJSON(data []byte) map[string]any {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	var decoded any
	if err := decodeNumbers(data, &decoded); err != nil {
		return nil
	}
	switch v := decoded.(type) {
	case map[string]any:
		return v
	case string:
		var inner map[string]any
		if err := decodeNumbers([]byte(v), &inner); err != nil {
			return nil
		}
		return inner
	default:
		return nil
	}
}

// decodeNumbers decodes a single JSON value keeping numbers as json.Number, so
// an out of range value is dropped by toNumber instead of failing the document
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}

func floatsToAny(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// toNumber coerces a loosely typed value the way a form or JSON client would send it
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// NormalizeCandidates accepts a list or a delimited string and returns the
// trimmed, deduplicated candidates in first-seen order
func (n Normalizer) NormalizeCandidates(raw any) ([]string, error) {
	max := n.MaxCandidates
	if max <= 0 {
		max = DefaultMaxCandidates
	}

	items := n.splitCandidates(raw)
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if len(out) == max {
			break
		}
	}

	if len(out) == 0 {
		return nil, ErrNoCandidates
	}
	return out, nil
}

func (n Normalizer) splitCandidates(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		return stringifyAll(v)
	case string:
		if list, ok := decodeCandidateArray([]byte(v)); ok {
			return list
		}
		return n.split(v)
	case []byte:
		return n.splitCandidatesJSON(v)
	case json.RawMessage:
		return n.splitCandidatesJSON(v)
	default:
		return nil
	}
}

func (n Normalizer) splitCandidatesJSON(data []byte) []string {
	if list, ok := decodeCandidateArray(data); ok {
		return list
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return n.splitCandidates(s)
	}
	return nil
}

func (n Normalizer) split(s string) []string {
	delims := n.Delimiters
	if delims == "" {
		delims = DefaultDelimiters
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(delims, r)
	})
}

func decodeCandidateArray(data []byte) ([]string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false
	}
	return stringifyAll(list), true
}

func stringifyAll(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch s := v.(type) {
		case string:
			out = append(out, s)
		case float64:
			out = append(out, strconv.FormatFloat(s, 'f', -1, 64))
		case bool, json.Number, int, int64:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}
