package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/apperr"
	"github.com/beverage/language-quiz-service/internal/http/dto"
	"github.com/beverage/language-quiz-service/internal/tracker"
)

// GenerationRequestHandler serves the request-tracking read endpoints.
type GenerationRequestHandler struct {
	tracker *tracker.Tracker
}

func NewGenerationRequestHandler(trk *tracker.Tracker) *GenerationRequestHandler {
	return &GenerationRequestHandler{tracker: trk}
}

// GetByID serves GET /generation-requests/{id}.
func (h *GenerationRequestHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apperr.New(apperr.KindValidation, "invalid generation request id"))
		return
	}

	req, problems, err := h.tracker.GetWithProblems(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToGenerationRequestResponse(req, problems))
}

// List serves GET /generation-requests?status=&entity_type=&limit=.
func (h *GenerationRequestHandler) List(c *gin.Context) {
	var q dto.ListGenerationRequestsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	reqs, err := h.tracker.List(c.Request.Context(), q.Status, q.EntityType, q.Limit)
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindRepositoryError, "listing generation requests", err))
		return
	}

	resp := dto.ListGenerationRequestsResponse{Requests: make([]dto.GenerationRequestResponse, len(reqs))}
	for i := range reqs {
		resp.Requests[i] = *dto.ToGenerationRequestResponse(&reqs[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}
