package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_TEMPERATURE", "OPENAI_TIMEOUT",
		"MAX_CANDIDATES", "CANDIDATE_DELIMITERS", "LLM_CALLS_PER_MINUTE", "LOG_LEVEL", "PORT",
		"REDIS_ADDR", "REDIS_DB", "BREAKER_FAILURE_THRESHOLD", "BREAKER_RECOVERY_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRankCommand_Heuristic(t *testing.T) {
	clearEnv(t)

	out, err := runCLI(t, "rank", "--criteria", `{"clarity":2,"impact":3}`, "--candidates", "A,B,A", "--json")
	require.NoError(t, err)

	var got ranking.Ranking
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ranking.SourceHeuristic, got.Source)
	assert.Equal(t, ranking.FallbackReasonUnavailable, got.FallbackReason)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "B", got.Results[0].Candidate)
	assert.Equal(t, 330.0, got.Results[0].Score)
	assert.Equal(t, "A", got.Results[1].Candidate)
	assert.Equal(t, 325.0, got.Results[1].Score)
}

func TestRankCommand_Table(t *testing.T) {
	clearEnv(t)

	out, err := runCLI(t, "rank", "--template", "balanced", "--candidates", `["x","y"]`)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "source: heuristic (service_unavailable)", lines[0])
	assert.Contains(t, lines[1], "CANDIDATE")
	assert.Contains(t, lines[2], "y")
	assert.Contains(t, lines[2], "240")
	assert.Contains(t, lines[2], "*")
}

func TestRankCommand_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name       string
		args       []string
		inputError bool
	}{
		{name: "no candidates", args: []string{"rank", "--criteria", `{"a":1}`, "--candidates", " , "}, inputError: true},
		{name: "invalid criteria", args: []string{"rank", "--criteria", `{"a":"x"}`, "--candidates", "A"}, inputError: true},
		{name: "unknown template", args: []string{"rank", "--template", "nope", "--candidates", "A"}, inputError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.inputError, ranking.IsInputError(err))
		})
	}
}

func TestRankCommand_External(t *testing.T) {
	clearEnv(t)

	content := `{"results":[{"candidate":"A","score":20,"reason":"weak"},{"candidate":"B","score":80,"reason":"strong"}]}`
	body, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", server.URL+"/v1/")

	out, err := runCLI(t, "rank", "--criteria", `{"impact":1}`, "--candidates", "A,B", "--json")
	require.NoError(t, err)

	var got ranking.Ranking
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ranking.SourceExternal, got.Source)
	require.Len(t, got.Results, 2)
	assert.Equal(t, ranking.Result{Candidate: "B", Score: 80, Reason: "strong"}, got.Results[0])
}

func TestScoreCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{
		"criteria": {"weights": {"q": 1}, "alpha": 1},
		"items": [
			{"candidate": "low", "metrics": {"q": 0.1}, "sourceCredibility": 1},
			{"candidate": "high", "metrics": {"q": 0.8}, "sourceCredibility": 1}
		]
	}`), 0o644))

	invalid := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{
		"criteria": {"weights": {"q": 1}},
		"items": [{"candidate": "a", "sourceCredibility": 2}]
	}`), 0o644))

	t.Run("scores file", func(t *testing.T) {
		out, err := runCLI(t, "score", "--file", valid, "--json")
		require.NoError(t, err)

		var results []ranking.Result
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "high", results[0].Candidate)
		assert.InDelta(t, 0.8, results[0].Score, 1e-9)
	})

	t.Run("rejects invalid factors", func(t *testing.T) {
		_, err := runCLI(t, "score", "--file", invalid)
		require.Error(t, err)
		assert.True(t, ranking.IsInputError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runCLI(t, "score", "--file", filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		assert.False(t, ranking.IsInputError(err))
	})
}

func TestTemplatesCommand(t *testing.T) {
	clearEnv(t)

	out, err := runCLI(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "balanced")
	assert.Contains(t, out, "data_driven")
	assert.Contains(t, out, "storytelling")
	assert.Contains(t, out, "clarity=4 creativity=3 impact=5")
}

func TestStatusCommand(t *testing.T) {
	clearEnv(t)

	out, err := runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not configured")
	assert.Contains(t, out, "gpt-4o-mini")

	t.Setenv("OPENAI_API_KEY", "k")
	out, err = runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "external ranking: configured")
}
