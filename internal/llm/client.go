// Package llm talks to an OpenAI compatible chat completions endpoint to rank candidates
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/monitoring"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second
)

// Config holds the chat completions settings
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	// Temperature is sent as is; config.Load supplies the default
	Temperature float64
	Timeout     time.Duration

	// HTTPClient is shared by every client the factory builds; nil uses the SDK default
	HTTPClient *http.Client
}

// Factory builds a Client per request from a fixed configuration
type Factory struct {
	cfg    Config
	logger *monitoring.Logger
}

// NewFactory creates a client factory. An empty API key is allowed; New then
// reports the service as unavailable.
func NewFactory(cfg Config, logger *monitoring.Logger) *Factory {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = &monitoring.Logger{Logger: slog.Default()}
	}
	return &Factory{cfg: cfg, logger: logger}
}

// Configured reports whether a credential is present
func (f *Factory) Configured() bool {
	return strings.TrimSpace(f.cfg.APIKey) != ""
}

// Model returns the model name requests are sent to
func (f *Factory) Model() string {
	return f.cfg.Model
}

// New returns a ready client or ranking.ErrServiceUnavailable
func (f *Factory) New() (ranking.ExternalRanker, error) {
	if !f.Configured() {
		return nil, ranking.ErrServiceUnavailable
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(f.cfg.APIKey)),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(f.cfg.Timeout),
	}
	if f.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(f.cfg.BaseURL))
	}
	if f.cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(f.cfg.HTTPClient))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       f.cfg.Model,
		temperature: f.cfg.Temperature,
		logger:      f.logger,
	}, nil
}

// Client ranks candidates with a single chat completion call. It never retries.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	logger      *monitoring.Logger
}

// RequestRanking sends one ranking request and parses the reply
func (c *Client) RequestRanking(ctx context.Context, criteria ranking.Criteria, candidates []string) ([]ranking.Result, error) {
	user, err := userPrompt(criteria, candidates)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
	})
	c.logger.ExternalAPILogger("openai", "chat.completions", time.Since(start), err)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ranking.RequestFailedError{Status: apiErr.StatusCode, Cause: err}
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	c.logger.Debug("Chat completion finished", "model", c.model, "candidates", len(candidates))

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ranking.ErrMalformedResponse)
	}
	return ParseRanking(completion.Choices[0].Message.Content, candidates)
}
