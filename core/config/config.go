package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/beverage/language-quiz-service/core/db"
)

// Config holds all application configuration.
type Config struct {
	Env  string
	Port string

	DB        db.Config
	Redis     RedisConfig
	LLM       LLMConfig
	OTel      OTelConfig
	RateLimit RateLimitConfig

	WorkerCount int
	// QueuePartitions is the nominal number of distinct consumer names the
	// stream is sized for. Redis Streams has no native partition concept;
	// this only gates a startup warning when WorkerCount exceeds it.
	QueuePartitions          int
	VirtualStalenessDays     float64
	ProblemGenerationTimeout time.Duration
	PromptVersion            string
	RequestExpiryMinutes     int
	AdminAPIKey              string
	TypesenseURL             string
	TypesenseAPIKey          string
}

// RedisConfig holds the broker connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LLMConfig holds the model-provider connection settings.
type LLMConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
}

// OTelConfig holds the optional telemetry exporter settings.
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Headers        string
}

// RateLimitConfig holds the default per-key rate limit.
type RateLimitConfig struct {
	DefaultRPM int
}

// Load loads configuration from environment variables.
// It provides sensible defaults for development.
func Load() (Config, error) {
	// best-effort: local dev convenience, absent in any real deployment
	_ = godotenv.Load()

	cfg := Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: db.Config{
			DSN:      buildDSN(),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			APIKey:     getEnv("LLM_API_KEY", ""),
			BaseURL:    getEnv("LLM_BASE_URL", ""),
			Model:      getEnv("LLM_MODEL", "gpt-4o-mini"),
			MaxRetries: getEnvInt("LLM_MAX_RETRIES", 3),
		},
		OTel: OTelConfig{
			Enabled:        getEnv("OTEL_ENABLED", "false") == "true",
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "language-quiz-service"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		},
		RateLimit: RateLimitConfig{
			DefaultRPM: getEnvInt("RATE_LIMIT_DEFAULT_RPM", 60),
		},
		WorkerCount:              getEnvInt("WORKER_COUNT", 2),
		QueuePartitions:          getEnvInt("QUEUE_PARTITIONS", 4),
		VirtualStalenessDays:     getEnvFloat("VIRTUAL_STALENESS_DAYS", 3.0),
		ProblemGenerationTimeout: time.Duration(getEnvInt("PROBLEM_GENERATION_TIMEOUT_MS", 60000)) * time.Millisecond,
		PromptVersion:            getEnv("PROMPT_VERSION", "2.0"),
		RequestExpiryMinutes:     getEnvInt("REQUEST_EXPIRY_MINUTES", 30),
		AdminAPIKey:              getEnv("ADMIN_API_KEY", ""),
		TypesenseURL:             getEnv("TYPESENSE_URL", ""),
		TypesenseAPIKey:          getEnv("TYPESENSE_API_KEY", ""),
	}

	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("LLM_API_KEY is required")
	}

	return cfg, nil
}

// buildDSN constructs the database connection string from individual env vars.
func buildDSN() string {
	host := getEnv("DATABASE_HOST", "localhost")
	port := getEnv("DATABASE_PORT", "5432")
	user := getEnv("DATABASE_USER", "postgres")
	password := getEnv("DATABASE_PASSWORD", "postgres")
	name := getEnv("DATABASE_NAME", "language_quiz")
	sslMode := getEnv("DATABASE_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, name, sslMode,
	)
}

// IsProduction returns true if running in production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment returns true if running in development environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
