// Package httpserver exposes the karma engine over HTTP: message intake,
// score queries, health probes and Prometheus metrics.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lasombra/rebot/internal/domain"
	"github.com/lasombra/rebot/internal/platform/config"
)

type appService interface {
	ProcessMessage(ctx context.Context, actorID, text, locale string) (domain.Result, string)
	Score(ctx context.Context, key string) (int64, error)
	Leaderboard(ctx context.Context, prefix string) ([]domain.Target, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *slog.Logger

	app            appService
	metricsHandler http.Handler
	healthChecks   []HealthCheck
	startTime      time.Time
}

func NewServer(cfg *config.Config, logger *slog.Logger, app appService, metricsHandler http.Handler, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         cfg,
		logger:         logger,
		app:            app,
		metricsHandler: metricsHandler,
		healthChecks:   healthChecks,
		startTime:      time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
