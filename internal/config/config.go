// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/engine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int // defaults to half the per-window allowance

	// Pipeline
	PipelineInterval time.Duration
	EvalRole         string // roster scope the scheduler evaluates
	EvalScope        string

	// Notification signaling
	NotifyMinInterval  time.Duration
	FCMCredentialsFile string // empty disables push delivery

	// Real-time trigger (Postgres LISTEN/NOTIFY)
	ListenEnabled bool

	// Alert store hygiene
	PurgeInterval time.Duration // zero disables the purge ticker
	PurgeKeepFor  time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("BEKUTA_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or BEKUTA_DATABASE_URL must be set")
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
		RateLimitBurst:    envInt("RATE_LIMIT_BURST", 0),

		PipelineInterval: time.Duration(envInt("PIPELINE_INTERVAL_MINUTES", 30)) * time.Minute,
		EvalRole:         envOr("PIPELINE_EVAL_ROLE", "admin"),
		EvalScope:        envOr("PIPELINE_EVAL_SCOPE", ""),

		NotifyMinInterval:  time.Duration(envInt("NOTIFY_MIN_INTERVAL_HOURS", 6)) * time.Hour,
		FCMCredentialsFile: envOr("FCM_CREDENTIALS_FILE", ""),

		ListenEnabled: envBool("LISTEN_ENABLED", true),

		PurgeInterval: time.Duration(envInt("ALERT_PURGE_INTERVAL_MINUTES", 60)) * time.Minute,
		PurgeKeepFor:  time.Duration(envInt("ALERT_PURGE_KEEP_DAYS", 30)) * 24 * time.Hour,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}

	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = cfg.RateLimitRequests / 2
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
