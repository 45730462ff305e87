// Package llm wraps the OpenAI chat-completions API behind a single
// generate operation returning cleaned, metered, retried structured output.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/beverage/language-quiz-service/internal/apperr"
)

// Client is the single operation the rest of the system depends on.
type Client interface {
	Generate(ctx context.Context, req Request) (*LLMResponse, error)
}

// Request describes one structured-output generation call.
type Request struct {
	SystemPrompt  string
	UserPrompt    string
	SchemaName    string
	Schema        any
	OperationTag  string
	Model         string // empty = client default
	MaxTokens     int
	Temperature   *float64
}

// LLMResponse is the cleaned, metadata-rich result of one generate call.
type LLMResponse struct {
	Content          string
	Model            string
	ResponseID       string
	DurationMS       int64
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ReasoningTokens  int
	ReasoningContent string
	RawContent       string
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
}

type client struct {
	openai     openai.Client
	model      string
	maxRetries int
	metrics    *Metrics
}

func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	metrics, err := NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("creating llm metrics: %w", err)
	}

	return &client{
		openai:     openai.NewClient(opts...),
		model:      model,
		maxRetries: maxRetries,
		metrics:    metrics,
	}, nil
}

// Generate invokes the model with exponential backoff and jitter for
// transient network/rate-limit failures, up to maxRetries attempts in all.
func (c *client) Generate(ctx context.Context, req Request) (*LLMResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 200 * time.Millisecond
			jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
			select {
			case <-ctx.Done():
				return nil, apperr.Wrap(apperr.KindContentGenerationFailed, req.OperationTag, ctx.Err())
			case <-time.After(backoff + jitter):
			}
		}

		resp, err := c.attempt(ctx, req, model)
		if err == nil {
			c.metrics.recordSuccess(ctx, model, req.OperationTag, resp)
			return resp, nil
		}

		lastErr = err
		if !IsRetryable(ctx, err) {
			break
		}
		slog.WarnContext(ctx, "llm generate retrying", "operation", req.OperationTag, "attempt", attempt)
	}

	c.metrics.recordFailure(ctx, model, req.OperationTag)
	return nil, apperr.Wrap(apperr.KindContentGenerationFailed, req.OperationTag, lastErr)
}

func (c *client) attempt(ctx context.Context, req Request, model string) (*LLMResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        req.SchemaName,
		Description: openai.String("Structured response schema"),
		Schema:      req.Schema,
		Strict:      openai.Bool(true),
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.SystemPrompt),
		openai.UserMessage(req.UserPrompt),
	}

	params := openai.ChatCompletionNewParams{
		Model:     model,
		Messages:  messages,
		MaxTokens: openai.Int(int64(maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	start := time.Now()
	resp, err := c.openai.Chat.Completions.New(ctx, params)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	raw := resp.Choices[0].Message.Content
	cleaned, err := Clean(raw)
	if err != nil {
		return nil, fmt.Errorf("cleaning response: %w", err)
	}

	slog.DebugContext(ctx, "llm generate completed",
		"model", model,
		"operation", req.OperationTag,
		"duration_ms", duration.Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return &LLMResponse{
		Content:          cleaned,
		Model:            model,
		ResponseID:       resp.ID,
		DurationMS:       duration.Milliseconds(),
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		RawContent:       raw,
	}, nil
}

// Clean strips outer whitespace and markdown code fences, then accepts the
// first top-level JSON object in the remaining text.
func Clean(content string) (string, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				var v map[string]any
				if err := json.Unmarshal([]byte(candidate), &v); err != nil {
					return "", fmt.Errorf("invalid JSON object: %w", err)
				}
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object in response")
}

// GenerateSchema reflects a Go type into a JSON Schema for structured output.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

// IsRetryable reports whether an error from Generate's single attempt is a
// transient network or rate-limit condition worth retrying.
func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			slog.WarnContext(ctx, "llm rate limited, will retry", "status_code", apiErr.StatusCode)
			return true
		case apiErr.StatusCode >= 500:
			slog.WarnContext(ctx, "llm server error, will retry", "status_code", apiErr.StatusCode)
			return true
		default:
			slog.ErrorContext(ctx, "llm client error, not retryable",
				"status_code", apiErr.StatusCode,
				"error_type", apiErr.Type,
				"error_code", apiErr.Code)
			return false
		}
	}

	// Network errors (no API response) are retryable; anything else (an
	// empty or unparseable response) is not.
	var netErr net.Error
	if errors.As(err, &netErr) {
		slog.WarnContext(ctx, "llm network error, will retry", "error", err)
		return true
	}
	slog.ErrorContext(ctx, "llm error, not retryable", "error", err)
	return false
}
