package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// External services
	CompletionAPIURL string // AI text-completion collaborator (ashley-chat)
	CatalogAPIURL    string // movie metadata collaborator (TMDB-compatible)
	CatalogAPIToken  string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration

	// Message pacing
	TypingDelay   time.Duration // typing indicator before each bot message
	MessageGap    time.Duration // pause between queued bot messages
	RedirectDelay time.Duration // wait before checkout navigation

	// Sessions
	SessionTTL      time.Duration // idle eviction
	SessionTokenTTL time.Duration
	JWTSecret       string

	// Catalog data
	CatalogFile string // optional YAML overriding the built-in catalog

	// Voice narration
	AudioEnabled bool

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CompletionAPIURL: getEnv("COMPLETION_API_URL", "http://localhost:8090"),
		CatalogAPIURL:    getEnv("CATALOG_API_URL", "https://api.themoviedb.org/3"),
		CatalogAPIToken:  getEnv("CATALOG_API_TOKEN", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),

		TypingDelay:   getEnvDuration("TYPING_DELAY", 4*time.Second),
		MessageGap:    getEnvDuration("MESSAGE_GAP", 2*time.Second),
		RedirectDelay: getEnvDuration("REDIRECT_DELAY", 3*time.Second),

		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionTokenTTL: getEnvDuration("SESSION_TOKEN_TTL", 2*time.Hour),
		JWTSecret:       getEnv("JWT_SECRET", "ashley-default-dev-secret-change-me"),

		CatalogFile: getEnv("CATALOG_FILE", ""),

		AudioEnabled: getEnv("AUDIO_ENABLED", "true") == "true",

		CacheTTL: getEnvDuration("CACHE_TTL", 10*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
