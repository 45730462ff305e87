package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where business
// context (problem_id, generation_request_id, etc.) is automatically included in all
// log statements without threading extra parameters through every call site.
type LogFields struct {
	ProblemID           *string // Problem ID
	GenerationRequestID *string // Generation request ID
	MessageID           *string // Redis stream message ID
	VerbID              *string // Verb ID
	APIKeyID            *string // Caller's API key ID
	Operation           *string // LLM operation tag (e.g., "sentence.correct")
	Component           string  // Component name (e.g., "worker.pool", "selector")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// mergeFields merges two LogFields, preferring non-nil/non-empty values from 'new'.
func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.ProblemID != nil {
		result.ProblemID = new.ProblemID
	}
	if new.GenerationRequestID != nil {
		result.GenerationRequestID = new.GenerationRequestID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.VerbID != nil {
		result.VerbID = new.VerbID
	}
	if new.APIKeyID != nil {
		result.APIKeyID = new.APIKeyID
	}
	if new.Operation != nil {
		result.Operation = new.Operation
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ProblemID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like queries or error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
