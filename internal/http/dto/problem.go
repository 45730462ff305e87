package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
)

// ProblemResponse is the wire shape of a servable quiz problem.
type ProblemResponse struct {
	ID                  uuid.UUID              `json:"id"`
	ProblemType         model.ProblemType      `json:"problem_type"`
	Title               string                 `json:"title"`
	Instructions        string                 `json:"instructions"`
	Statements          []model.Statement      `json:"statements"`
	CorrectAnswerIndex  int                    `json:"correct_answer_index"`
	TopicTags           []string               `json:"topic_tags"`
	Metadata            model.ProblemMetadata  `json:"metadata"`
	TargetLanguageCode  string                 `json:"target_language_code"`
	CreatedAt           time.Time              `json:"created_at"`
	LastServedAt        *time.Time             `json:"last_served_at,omitempty"`
	GenerationRequestID *uuid.UUID             `json:"generation_request_id,omitempty"`
}

func ToProblemResponse(p *model.Problem) *ProblemResponse {
	return &ProblemResponse{
		ID:                  p.ID,
		ProblemType:         p.ProblemType,
		Title:               p.Title,
		Instructions:        p.Instructions,
		Statements:          p.Statements,
		CorrectAnswerIndex:  p.CorrectAnswerIndex,
		TopicTags:           p.TopicTags,
		Metadata:            p.Metadata,
		TargetLanguageCode:  p.TargetLanguageCode,
		CreatedAt:           p.CreatedAt,
		LastServedAt:        p.LastServedAt,
		GenerationRequestID: p.GenerationRequestID,
	}
}

// RandomProblemQuery binds the query params accepted by GET /problems/random.
type RandomProblemQuery struct {
	ProblemType        *model.ProblemType `form:"problem_type"`
	GrammaticalFocus   *string            `form:"grammatical_focus"`
	TensesUsed         string             `form:"tenses_used"`
	TopicTags          string             `form:"topic_tags"`
	TargetLanguageCode *string            `form:"target_language_code"`
}

// GenerateProblemRequest is the body of POST /problems/generate.
type GenerateProblemRequest struct {
	Count       int                `json:"count" binding:"required,min=1,max=10"`
	Constraints model.Constraints  `json:"constraints"`
}

// GenerateProblemResponse is returned 202 Accepted on successful enqueue.
type GenerateProblemResponse struct {
	RequestID uuid.UUID           `json:"request_id"`
	Count     int                 `json:"count"`
	Status    model.RequestStatus `json:"status"`
}
