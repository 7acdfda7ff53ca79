package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	// DatabaseURL selects the postgres counter store; empty falls back to
	// the in-memory store (scores lost on restart).
	DatabaseURL string `env:"DATABASE_URL"`
	// RedisURL selects the redis dedup store for multi-worker deployments;
	// empty falls back to the in-process dedup cache.
	RedisURL string `env:"REDIS_URL"`

	KarmaTTL             time.Duration `env:"KARMA_TTL" default:"30s"`
	KarmaCacheMaxEntries int           `env:"KARMA_CACHE_MAX_ENTRIES" default:"100000"`
	DedupSweepInterval   time.Duration `env:"DEDUP_SWEEP_INTERVAL" default:"1m"`

	DefaultLocale string `env:"DEFAULT_LOCALE" default:"en"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" default:"20"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" default:"40"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.KarmaTTL < 0 {
		return fmt.Errorf("KARMA_TTL must not be negative, got %s", cfg.KarmaTTL)
	}
	if cfg.KarmaCacheMaxEntries < 0 {
		return fmt.Errorf("KARMA_CACHE_MAX_ENTRIES must not be negative, got %d", cfg.KarmaCacheMaxEntries)
	}
	if cfg.DedupSweepInterval <= 0 {
		return fmt.Errorf("DEDUP_SWEEP_INTERVAL must be positive, got %s", cfg.DedupSweepInterval)
	}
	if cfg.RateLimitPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive, got %f", cfg.RateLimitPerSecond)
	}
	return nil
}
