package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beverage/language-quiz-service/common/llm"
	"github.com/beverage/language-quiz-service/common/logger"
	"github.com/beverage/language-quiz-service/common/otel"
	"github.com/beverage/language-quiz-service/core/config"
	"github.com/beverage/language-quiz-service/core/db"
	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/index"
	"github.com/beverage/language-quiz-service/internal/packager"
	"github.com/beverage/language-quiz-service/internal/queue"
	"github.com/beverage/language-quiz-service/internal/store"
	"github.com/beverage/language-quiz-service/internal/tracker"
	"github.com/beverage/language-quiz-service/internal/worker"
)

const (
	consumerGroup     = queue.ConsumerGroup
	reclaimInterval   = 30 * time.Second
	reclaimMinIdle    = 2 * time.Minute
	reclaimBatchSize  = 50
	consumerBatchSize = 1
	consumerBlock     = 5 * time.Second
	maxAttempts       = 3
	sweepInterval     = time.Minute
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	consumerName := consumerName()
	slog.InfoContext(ctx, "quiz worker starting",
		"env", cfg.Env,
		"consumer_group", consumerGroup,
		"consumer_name", consumerName,
		"worker_count", cfg.WorkerCount)

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

	if cfg.WorkerCount > cfg.QueuePartitions {
		slog.WarnContext(ctx, "worker count exceeds the configured nominal queue partition count; "+
			"Redis Streams has no per-partition ceiling, but sizing WORKER_COUNT well past "+
			"QUEUE_PARTITIONS buys little beyond more idle XREADGROUP pollers",
			"worker_count", cfg.WorkerCount,
			"queue_partitions", cfg.QueuePartitions)
	}

	// The message-ack fallback consumer used only when the reclaimer hits a
	// malformed message it can't parse; it isn't one of the group's working
	// consumers (see the per-worker loop below, each of which registers its
	// own distinct consumer name).
	ackConsumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       queue.StreamName,
		Group:        consumerGroup,
		Consumer:     consumerName + "-reclaimer",
		DLQStream:    queue.DLQStreamName,
		BatchSize:    consumerBatchSize,
		Block:        consumerBlock,
		MaxAttempts:  maxAttempts,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	llmClient, err := llm.New(llm.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm client initialized", "model", cfg.LLM.Model)

	stores := store.NewStores(database.Pool())

	problems := stores.Problems()
	if cfg.TypesenseURL != "" {
		problemIndex := index.New(cfg.TypesenseURL, cfg.TypesenseAPIKey)
		if err := problemIndex.EnsureCollection(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to ensure problem index collection", "error", err)
			os.Exit(1)
		}
		problems = index.NewIndexedProblemStore(problems, problemIndex)
		slog.InfoContext(ctx, "problem facet index enabled", "server", cfg.TypesenseURL)
	} else {
		slog.InfoContext(ctx, "problem facet index disabled (no TYPESENSE_URL configured)")
	}

	verbCache := cache.NewVerbCache(stores.Verbs())

	pkg := packager.New(llmClient)
	generator := worker.NewProblemGenerator(stores.Verbs(), stores.Sentences(), problems, pkg, cfg.LLM.Model).
		WithVerbCache(verbCache)
	trk := tracker.New(stores.Requests())

	var wg sync.WaitGroup
	workers := make([]*worker.Worker, 0, cfg.WorkerCount)
	for i := 0; i < cfg.WorkerCount; i++ {
		// Each goroutine registers its own consumer name in the shared
		// group, so Redis Streams' round-robin delivery actually spreads
		// messages across them instead of every goroutine reading as the
		// same consumer identity and serializing on XREADGROUP.
		workerConsumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
			Stream:       queue.StreamName,
			Group:        consumerGroup,
			Consumer:     fmt.Sprintf("%s-%d", consumerName, i),
			DLQStream:    queue.DLQStreamName,
			BatchSize:    consumerBatchSize,
			Block:        consumerBlock,
			MaxAttempts:  maxAttempts,
			RequeueDelay: time.Second,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create consumer", "error", err, "worker_index", i)
			os.Exit(1)
		}

		w := worker.New(workerConsumer, trk, generator, worker.Config{MaxAttempts: maxAttempts})
		workers = append(workers, w)
		wg.Add(1)
		go func(w *worker.Worker) {
			defer wg.Done()
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				slog.ErrorContext(ctx, "worker exited with error", "error", err)
			}
		}(w)
	}

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    queue.StreamName,
		Group:     consumerGroup,
		Consumer:  consumerName + "-reclaimer",
		MinIdle:   reclaimMinIdle,
		Interval:  reclaimInterval,
		BatchSize: reclaimBatchSize,
	}, ackConsumer, func(ctx context.Context, msg queue.Message) error {
		return workers[0].ProcessMessage(ctx, msg)
	})
	go reclaimer.Run(ctx)

	// Expires requests abandoned mid-processing (crashed worker, message
	// never redelivered past max attempts) so they don't sit in "processing"
	// forever; complements the reclaimer, which only recovers the message,
	// not the request's terminal status.
	sweeper := tracker.NewSweeper(trk, sweepInterval, time.Duration(cfg.RequestExpiryMinutes)*time.Minute)
	go sweeper.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	reclaimer.Stop()
	sweeper.Stop()
	for _, w := range workers {
		w.Stop()
	}
	wg.Wait()

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "shutdown complete")
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

const banner = `
==============================
  language quiz worker
==============================
`
