package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProblemType distinguishes the three statement shapes a problem can carry.
type ProblemType string

const (
	ProblemTypeGrammar    ProblemType = "grammar"
	ProblemTypeFunctional ProblemType = "functional"
	ProblemTypeVocabulary ProblemType = "vocabulary"
)

// Statement is an opaque, type-shaped JSON object; the concrete required keys
// depend on ProblemType and are enforced by the storage gateway when a problem
// is created (see internal/store's statement-shape validation), not by this struct.
type Statement map[string]any

// ProblemMetadata is the free-form metadata blob recorded on a problem.
type ProblemMetadata struct {
	GrammaticalFocus []string `json:"grammatical_focus,omitempty"`
	TensesUsed       []string `json:"tenses_used,omitempty"`
	VerbInfinitives  []string `json:"verb_infinitives,omitempty"`
	IncludesCOD      bool     `json:"includes_cod"`
	IncludesCOI      bool     `json:"includes_coi"`
	IncludesNegation bool     `json:"includes_negation"`
	PromptVersion    string   `json:"prompt_version"`
}

// Problem is a persisted, servable multiple-choice quiz item.
type Problem struct {
	ID                  uuid.UUID        `json:"id"`
	ProblemType         ProblemType      `json:"problem_type"`
	Title               string           `json:"title"`
	Instructions        string           `json:"instructions"`
	Statements          []Statement      `json:"statements"`
	CorrectAnswerIndex  int              `json:"correct_answer_index"`
	TopicTags           []string         `json:"topic_tags"`
	SourceStatementIDs  []uuid.UUID      `json:"source_statement_ids"`
	Metadata            ProblemMetadata  `json:"metadata"`
	TargetLanguageCode  string           `json:"target_language_code"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	LastServedAt        *time.Time       `json:"last_served_at,omitempty"`
	GenerationTrace     *GenerationTrace `json:"generation_trace,omitempty"`
	GenerationRequestID *uuid.UUID       `json:"generation_request_id,omitempty"`
}

// ValidAnswerIndex reports the correct_answer_index invariant (testable property 1).
func (p Problem) ValidAnswerIndex() bool {
	return p.CorrectAnswerIndex >= 0 && p.CorrectAnswerIndex < len(p.Statements)
}

// RawJSON round-trips a Statement through byte-exact storage representation.
func (s Statement) RawJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}
