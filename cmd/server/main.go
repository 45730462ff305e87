package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/beverage/language-quiz-service/common/logger"
	"github.com/beverage/language-quiz-service/common/otel"
	"github.com/beverage/language-quiz-service/core/config"
	"github.com/beverage/language-quiz-service/core/db"
	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/http/handler"
	httprouter "github.com/beverage/language-quiz-service/internal/http/router"
	"github.com/beverage/language-quiz-service/internal/index"
	"github.com/beverage/language-quiz-service/internal/queue"
	"github.com/beverage/language-quiz-service/internal/ratelimit"
	"github.com/beverage/language-quiz-service/internal/selector"
	"github.com/beverage/language-quiz-service/internal/store"
	"github.com/beverage/language-quiz-service/internal/tracker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "quiz server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL("redis://" + cfg.Redis.Addr)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis address", "error", err)
		os.Exit(1)
	}
	redisOpts.Password = cfg.Redis.Password
	redisOpts.DB = cfg.Redis.DB

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", queue.StreamName)

	stores := store.NewStores(database.Pool())

	caches := &cache.Caches{
		Verbs:        cache.NewVerbCache(stores.Verbs()),
		Conjugations: cache.NewConjugationCache(stores.Conjugations()),
		Keys:         cache.NewKeyCache(stores.APIKeys()),
	}
	if err := caches.ReloadAll(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to warm caches", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "caches warmed")

	problems := stores.Problems()
	sel := selector.New(problems)
	if cfg.TypesenseURL != "" {
		problemIndex := index.New(cfg.TypesenseURL, cfg.TypesenseAPIKey)
		if err := problemIndex.EnsureCollection(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to ensure problem index collection", "error", err)
			os.Exit(1)
		}
		problems = index.NewIndexedProblemStore(problems, problemIndex)
		sel = selector.New(problems).WithIndex(problemIndex)
		slog.InfoContext(ctx, "problem facet index enabled", "server", cfg.TypesenseURL)
	} else {
		slog.InfoContext(ctx, "problem facet index disabled (no TYPESENSE_URL configured)")
	}
	trk := tracker.New(stores.Requests())
	producer := queue.NewRedisProducer(redisClient, queue.StreamName)
	limiter := ratelimit.New(cfg.RateLimit.DefaultRPM)
	health := handler.NewHealthHandler(database, redisClient)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, httprouter.Config{
		Stores:   stores,
		Caches:   caches,
		Selector: sel,
		Tracker:  trk,
		Producer: producer,
		Limiter:  limiter,
		Health:   health,
		Stream:   queue.StreamName,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, routerCfg httprouter.Config) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span -> Recovery catches panics -> Logger logs with trace context
	if cfg.OTel.Enabled {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}

	httprouter.SetupRoutes(router, routerCfg)

	return router
}

const banner = `
==============================
  language quiz service
==============================
`
