package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/metrics"
)

// ErrMalformedResponse signals a completion that is not the requested JSON shape.
var ErrMalformedResponse = errors.New("malformed model response")

// Config holds the OpenAI-compatible provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Provider string
	Logger   *zap.Logger
}

// client wraps a go-openai client with JSON-mode completions and provider metrics.
type client struct {
	api      *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

func newClient(cfg *Config) *client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}

	return &client{
		api:      openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: provider,
		logger:   l,
	}
}

// completeJSON runs one JSON-mode chat completion and decodes the answer into out.
// user is forwarded as the end-user id when non-empty.
func (c *client) completeJSON(
	ctx context.Context, operation, user string, messages []openai.ChatCompletionMessage, out any,
) error {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
		User:        user,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		metrics.ObserveProvider(c.provider, operation, start, err)
		return parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		err = fmt.Errorf("no choices in completion: %w", ErrMalformedResponse)
		metrics.ObserveProvider(c.provider, operation, start, err)
		return err
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		c.logger.Warn("Unparseable model response",
			zap.String("provider", c.provider),
			zap.String("operation", operation),
			zap.String("response", content),
			zap.Error(err),
		)
		err = fmt.Errorf("decode completion: %w: %w", ErrMalformedResponse, err)
		metrics.ObserveProvider(c.provider, operation, start, err)
		return err
	}

	metrics.ObserveProvider(c.provider, operation, start, nil)
	c.logger.Debug("Completion decoded",
		zap.String("provider", c.provider),
		zap.String("operation", operation),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// stripCodeFence removes a markdown fence some models wrap around JSON even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("openai API error %d: %s: %w", reqErr.HTTPStatusCode, detail, err)
		}
		return fmt.Errorf("openai API error %d: %w", reqErr.HTTPStatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	return fmt.Errorf("openai request failed: %w", err)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
