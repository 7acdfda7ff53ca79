package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lasombra/rebot/internal/adapter/httpserver"
	"github.com/lasombra/rebot/internal/adapter/metrics"
	"github.com/lasombra/rebot/internal/adapter/postgres"
	"github.com/lasombra/rebot/internal/adapter/redis"
	"github.com/lasombra/rebot/internal/app"
	"github.com/lasombra/rebot/internal/domain"
	"github.com/lasombra/rebot/internal/i18n"
	"github.com/lasombra/rebot/internal/karma"
	"github.com/lasombra/rebot/internal/platform/config"
	"github.com/lasombra/rebot/internal/platform/logging"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *httpserver.Server, cleanups ...func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		for _, cleanup := range cleanups {
			cleanup()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	registry := metrics.NewRegistry()
	karmaMetrics := metrics.NewKarmaMetrics(registry)

	var (
		healthChecks []httpserver.HealthCheck
		cleanups     []func()
	)

	// Counter store: postgres behind a circuit breaker when configured,
	// otherwise in-memory (scores lost on restart).
	var store domain.CounterStore
	if cfg.DatabaseURL != "" {
		pool := setupDB(cfg)
		cleanups = append(cleanups, pool.Close)

		repo := postgres.NewKarmaRepo(pool, logger)
		store = karma.NewBreakerStore(repo, logger, func(_, to string) {
			karmaMetrics.BreakerState.Set(metrics.BreakerStateValue(to))
		})

		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "database",
			Check: pool.Ping,
		})
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory counter store")
		store = karma.NewInMemoryStore()
	}

	// Dedup store: redis for multi-instance deployments, otherwise the
	// in-process cache with a background eviction sweep.
	var dedup domain.DedupStore
	if cfg.RedisURL != "" {
		redisClient := setupRedis(cfg)
		cleanups = append(cleanups, func() { _ = redisClient.Close() })

		dedup = redis.NewDedupStore(redisClient, cfg.KarmaTTL)

		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		var cache *karma.DedupCache
		cache = karma.NewDedupCache(cfg.KarmaTTL, cfg.KarmaCacheMaxEntries, clock, logger,
			func(key string, value int64, cause karma.RemovalCause) {
				karmaMetrics.DedupRemovals.WithLabelValues(string(cause)).Inc()
				karmaMetrics.DedupSize.Set(float64(cache.Size()))
			})

		stopEviction := cache.StartEvictionTimer(cfg.DedupSweepInterval)
		cleanups = append(cleanups, stopEviction)

		dedup = cache
	}

	engine := karma.NewEngine(store, dedup, logger)
	renderer := i18n.NewRenderer()
	appSvc := app.NewService(engine, renderer, karmaMetrics, clock)

	srv := httpserver.NewServer(cfg, logger, appSvc, metrics.Handler(registry), healthChecks)

	done := runGracefulShutdown(srv, cleanups...)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
