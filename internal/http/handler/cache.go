package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beverage/language-quiz-service/internal/apperr"
	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/http/dto"
)

// CacheHandler serves the cache-introspection and reload admin endpoints.
type CacheHandler struct {
	caches *cache.Caches
}

func NewCacheHandler(caches *cache.Caches) *CacheHandler {
	return &CacheHandler{caches: caches}
}

// Stats serves GET /cache/stats.
func (h *CacheHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToCacheStatsResponse(h.caches.AllStats()))
}

// Reload serves POST /cache/reload, an admin-only affordance mirroring the
// CLI's `cache reload` verb.
func (h *CacheHandler) Reload(c *gin.Context) {
	if err := h.caches.ReloadAll(c.Request.Context()); err != nil {
		writeError(c, apperr.Wrap(apperr.KindRepositoryError, "reloading caches", err))
		return
	}
	c.Status(http.StatusNoContent)
}
