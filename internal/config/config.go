package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// BackendURL is the REST API base, e.g. http://localhost:8080/api
	BackendURL          string
	BackendReadTimeout  time.Duration
	BackendWriteTimeout time.Duration

	// Redis: store snapshots + rate limiting. Empty means in-memory.
	RedisURL string
	StoreTTL time.Duration

	// RabbitMQ audit events. Empty means log-only audit.
	RabbitURL      string
	RabbitExchange string

	SessionSecret string
	DefaultLocale string

	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	LogLevel  string
	LogFormat string

	TracingEnabled bool
	OTLPEndpoint   string
}

func Load() *Config {
	// .env is optional
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("HTTP_PORT", "8090"),
		BackendURL:          strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8080/api"), "/"),
		BackendReadTimeout:  getDuration("BACKEND_READ_TIMEOUT", 2*time.Second),
		BackendWriteTimeout: getDuration("BACKEND_WRITE_TIMEOUT", 5*time.Second),
		RedisURL:            getEnv("REDIS_URL", ""),
		StoreTTL:            getDuration("STORE_TTL", 10*time.Minute),
		RabbitURL:           getEnv("RABBIT_URL", ""),
		RabbitExchange:      getEnv("RABBIT_EXCHANGE", "admin.audit"),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		DefaultLocale:       getEnv("DEFAULT_LOCALE", "en-US"),
		RLEnabled:           getEnv("RL_ENABLED", "true") == "true",
		RLLimit:             getIntEnv("RL_LIMIT", 60),
		RLWindow:            getDuration("RL_WINDOW", time.Minute),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "console"),
		TracingEnabled:      getEnv("TRACING_ENABLED", "false") == "true",
		OTLPEndpoint:        getEnv("OTLP_ENDPOINT", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
