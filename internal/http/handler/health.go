package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/beverage/language-quiz-service/core/db"
)

// Pinger is satisfied by *db.DB; narrowed so this handler doesn't need the
// whole database package surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /health: liveness requires storage and the
// broker to both answer a ping.
type HealthHandler struct {
	database Pinger
	redis    *redis.Client
}

func NewHealthHandler(database *db.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{database: database, redis: redisClient}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.database.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "component": "storage", "error": err.Error()})
		return
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "component": "broker", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
