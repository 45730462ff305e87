package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the GenerationRequest lifecycle state.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestProcessing RequestStatus = "processing"
	RequestCompleted  RequestStatus = "completed"
	RequestPartial    RequestStatus = "partial"
	RequestFailed     RequestStatus = "failed"
	RequestExpired    RequestStatus = "expired"
)

// IsTerminal reports whether a status ends the request's lifecycle.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestCompleted, RequestPartial, RequestFailed, RequestExpired:
		return true
	default:
		return false
	}
}

// Constraints narrows which verbs/sentence parameters a generation may draw from.
type Constraints struct {
	ProblemType        *ProblemType `json:"problem_type,omitempty"`
	TargetLanguageCode *string      `json:"target_language_code,omitempty"`
	VerbInfinitive     *string      `json:"verb_infinitive,omitempty"`
	Tenses             []Tense      `json:"tenses,omitempty"`
	TopicTags          []string     `json:"topic_tags,omitempty"`
}

// GenerationRequest tracks one client-initiated batch of N generation tasks.
type GenerationRequest struct {
	ID             uuid.UUID      `json:"id"`
	EntityType     ProblemType    `json:"entity_type"`
	Status         RequestStatus  `json:"status"`
	RequestedCount int            `json:"requested_count"`
	GeneratedCount int            `json:"generated_count"`
	FailedCount    int            `json:"failed_count"`
	RequestedAt    time.Time      `json:"requested_at"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	Constraints    Constraints    `json:"constraints"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
}

// Accounted reports whether every dispatched entity has reported an outcome.
func (r GenerationRequest) Accounted() bool {
	return r.GeneratedCount+r.FailedCount == r.RequestedCount
}

// TerminalStatus computes the status a fully-accounted request should settle into.
func (r GenerationRequest) TerminalStatus() RequestStatus {
	switch {
	case r.FailedCount == 0:
		return RequestCompleted
	case r.GeneratedCount == 0:
		return RequestFailed
	default:
		return RequestPartial
	}
}
