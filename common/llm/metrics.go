package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "language-quiz-service/llm"

// Metrics holds the histogram/counter instruments the LLM client emits.
type Metrics struct {
	duration    metric.Float64Histogram
	requests    metric.Int64Counter
	failures    metric.Int64Counter
	promptTok   metric.Int64Counter
	completeTok metric.Int64Counter
	reasonTok   metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	duration, err := meter.Float64Histogram("llm.request.duration_ms",
		metric.WithDescription("Duration of LLM generate calls in milliseconds"))
	if err != nil {
		return nil, err
	}
	requests, err := meter.Int64Counter("llm.requests",
		metric.WithDescription("Count of LLM generate calls by model/operation/status"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("llm.failures",
		metric.WithDescription("Count of LLM generate calls that exhausted retries"))
	if err != nil {
		return nil, err
	}
	promptTok, err := meter.Int64Counter("llm.tokens.prompt")
	if err != nil {
		return nil, err
	}
	completeTok, err := meter.Int64Counter("llm.tokens.completion")
	if err != nil {
		return nil, err
	}
	reasonTok, err := meter.Int64Counter("llm.tokens.reasoning")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		duration:    duration,
		requests:    requests,
		failures:    failures,
		promptTok:   promptTok,
		completeTok: completeTok,
		reasonTok:   reasonTok,
	}, nil
}

func (m *Metrics) recordSuccess(ctx context.Context, model, operation string, resp *LLMResponse) {
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("operation", operation),
		attribute.String("status", "ok"),
	)
	m.duration.Record(ctx, float64(resp.DurationMS), attrs)
	m.requests.Add(ctx, 1, attrs)
	m.promptTok.Add(ctx, int64(resp.PromptTokens), attrs)
	m.completeTok.Add(ctx, int64(resp.CompletionTokens), attrs)
	m.reasonTok.Add(ctx, int64(resp.ReasoningTokens), attrs)
}

func (m *Metrics) recordFailure(ctx context.Context, model, operation string) {
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("operation", operation),
		attribute.String("status", "failed"),
	)
	m.requests.Add(ctx, 1, attrs)
	m.failures.Add(ctx, 1, attrs)
}
