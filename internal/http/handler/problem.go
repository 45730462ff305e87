package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/common"
	"github.com/beverage/language-quiz-service/internal/apperr"
	"github.com/beverage/language-quiz-service/internal/http/dto"
	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/queue"
	"github.com/beverage/language-quiz-service/internal/selector"
	"github.com/beverage/language-quiz-service/internal/store"
	"github.com/beverage/language-quiz-service/internal/tracker"
)

// ProblemHandler serves the retrieval and generation-dispatch endpoints.
type ProblemHandler struct {
	problems store.ProblemStore
	selector *selector.Selector
	tracker  *tracker.Tracker
	producer queue.Producer
	stream   string
}

func NewProblemHandler(problems store.ProblemStore, sel *selector.Selector, trk *tracker.Tracker, producer queue.Producer, stream string) *ProblemHandler {
	return &ProblemHandler{problems: problems, selector: sel, tracker: trk, producer: producer, stream: stream}
}

// Random serves GET /problems/random.
func (h *ProblemHandler) Random(c *gin.Context) {
	var q dto.RandomProblemQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	criteria := selector.Criteria{
		ProblemType:        q.ProblemType,
		GrammaticalFocus:   q.GrammaticalFocus,
		TensesUsed:         parseTenses(q.TensesUsed),
		TopicTags:          normalizeTopicTags(splitCSV(q.TopicTags)),
		TargetLanguageCode: q.TargetLanguageCode,
	}

	problem, err := h.selector.Pick(c.Request.Context(), criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProblemResponse(problem))
}

// GetByID serves GET /problems/{id}.
func (h *ProblemHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apperr.New(apperr.KindValidation, "invalid problem id"))
		return
	}

	problem, err := h.problems.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProblemResponse(problem))
}

// Generate serves POST /problems/generate. It publishes one message per
// requested problem (count is always 1 on the wire) so dispatch fans out
// across however many consumers are reading the stream rather than
// collapsing an N-problem request onto whichever single worker claims it.
// The generation request record is only left in place once at least one
// message has been published; a publish failure before any message got out
// rolls the record back so no orphaned request survives a 503.
func (h *ProblemHandler) Generate(c *gin.Context) {
	var req dto.GenerateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	ctx := c.Request.Context()
	entityType := model.ProblemTypeGrammar
	if req.Constraints.ProblemType != nil {
		entityType = *req.Constraints.ProblemType
	}
	req.Constraints.TopicTags = normalizeTopicTags(req.Constraints.TopicTags)

	genReq, err := h.tracker.Open(ctx, entityType, req.Count, req.Constraints)
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindRepositoryError, "opening generation request", err))
		return
	}

	for i := 0; i < req.Count; i++ {
		msg := queue.GenerationMessage{
			GenerationRequestID: genReq.ID.String(),
			EntityType:          entityType,
			Count:               1,
			Constraints:         req.Constraints,
		}
		if err := h.producer.Enqueue(ctx, msg); err != nil {
			if i == 0 {
				// nothing dispatched yet: safe to roll the request back outright.
				_ = h.tracker.Discard(ctx, genReq.ID)
			}
			writeError(c, apperr.Wrap(apperr.KindBrokerUnavailable, "publishing generation message", err))
			return
		}
	}

	c.JSON(http.StatusAccepted, dto.GenerateProblemResponse{
		RequestID: genReq.ID,
		Count:     genReq.RequestedCount,
		Status:    genReq.Status,
	})
}

func parseTenses(csv string) []model.Tense {
	parts := splitCSV(csv)
	if parts == nil {
		return nil
	}
	out := make([]model.Tense, len(parts))
	for i, p := range parts {
		out[i] = model.Tense(p)
	}
	return out
}

func splitCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeTopicTags slugifies caller-supplied tags so "Passe Compose" and
// "passe-compose" land on the same tag for storage (topic_tags array
// overlap) and index (internal/index facet) matching. Accented letters are
// not folded: like any other non [a-z0-9] character they become "-". A tag that slugifies
// to empty (e.g. punctuation-only) is dropped rather than stored as "".
func normalizeTopicTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		slug, err := common.Slugify(t, "")
		if err != nil {
			continue
		}
		out = append(out, slug)
	}
	return out
}
