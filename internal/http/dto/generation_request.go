package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
)

// GenerationRequestResponse is the wire shape of a tracked generation batch.
type GenerationRequestResponse struct {
	ID             uuid.UUID           `json:"id"`
	EntityType     model.ProblemType   `json:"entity_type"`
	Status         model.RequestStatus `json:"status"`
	RequestedCount int                 `json:"requested_count"`
	GeneratedCount int                 `json:"generated_count"`
	FailedCount    int                 `json:"failed_count"`
	RequestedAt    time.Time           `json:"requested_at"`
	StartedAt      *time.Time          `json:"started_at,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	Constraints    model.Constraints   `json:"constraints"`
	ErrorMessage   string              `json:"error_message,omitempty"`
	Problems       []ProblemResponse   `json:"problems,omitempty"`
}

func ToGenerationRequestResponse(r *model.GenerationRequest, problems []model.Problem) *GenerationRequestResponse {
	resp := &GenerationRequestResponse{
		ID:             r.ID,
		EntityType:     r.EntityType,
		Status:         r.Status,
		RequestedCount: r.RequestedCount,
		GeneratedCount: r.GeneratedCount,
		FailedCount:    r.FailedCount,
		RequestedAt:    r.RequestedAt,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		Constraints:    r.Constraints,
		ErrorMessage:   r.ErrorMessage,
	}
	for i := range problems {
		resp.Problems = append(resp.Problems, *ToProblemResponse(&problems[i]))
	}
	return resp
}

// ListGenerationRequestsQuery binds GET /generation-requests's query params.
type ListGenerationRequestsQuery struct {
	Status     *model.RequestStatus `form:"status"`
	EntityType *model.ProblemType   `form:"entity_type"`
	Limit      int                  `form:"limit"`
}

type ListGenerationRequestsResponse struct {
	Requests []GenerationRequestResponse `json:"requests"`
}
