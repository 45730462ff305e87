package router

import (
	"github.com/gin-gonic/gin"

	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/http/handler"
	"github.com/beverage/language-quiz-service/internal/middleware"
	"github.com/beverage/language-quiz-service/internal/queue"
	"github.com/beverage/language-quiz-service/internal/ratelimit"
	"github.com/beverage/language-quiz-service/internal/selector"
	"github.com/beverage/language-quiz-service/internal/store"
	"github.com/beverage/language-quiz-service/internal/tracker"
)

// Config bundles everything SetupRoutes needs to wire handlers and
// middleware without importing cmd/server's concrete wiring.
type Config struct {
	Stores   *store.Stores
	Caches   *cache.Caches
	Selector *selector.Selector
	Tracker  *tracker.Tracker
	Producer queue.Producer
	Limiter  *ratelimit.Limiter
	Health   *handler.HealthHandler
	Stream   string
}

// SetupRoutes registers every handler under /api/v1, guarded by the shared
// auth/rate-limit/recovery/logging middleware stack.
func SetupRoutes(router *gin.Engine, cfg Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	router.GET("/health", cfg.Health.Health)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAPIKey(cfg.Caches.Keys, cfg.Limiter, cfg.Stores.APIKeys()))

	problemHandler := handler.NewProblemHandler(cfg.Stores.Problems(), cfg.Selector, cfg.Tracker, cfg.Producer, cfg.Stream)
	ProblemRouter(v1.Group("/problems"), problemHandler)

	requestHandler := handler.NewGenerationRequestHandler(cfg.Tracker)
	GenerationRequestRouter(v1.Group("/generation-requests"), requestHandler)

	cacheHandler := handler.NewCacheHandler(cfg.Caches)
	CacheRouter(v1.Group("/cache"), cacheHandler)
}
