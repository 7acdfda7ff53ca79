package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lasombra/rebot/internal/domain"
	apperrors "github.com/lasombra/rebot/internal/errors"
	"github.com/lasombra/rebot/internal/karma"
)

const maxMessageLength = 500

type processMessageRequest struct {
	ActorID string `json:"actor_id"`
	Text    string `json:"text"`
	Locale  string `json:"locale"`
}

type processMessageResponse struct {
	Outcome  domain.Outcome `json:"outcome"`
	Target   string         `json:"target,omitempty"`
	Score    int64          `json:"score"`
	Reply    string         `json:"reply,omitempty"`
	Degraded bool           `json:"degraded,omitempty"`
}

type scoreResponse struct {
	Key   string `json:"key"`
	Score int64  `json:"score"`
}

type leaderboardResponse struct {
	Prefix  string          `json:"prefix"`
	Targets []scoreResponse `json:"targets"`
}

func (s *Server) handleProcessMessage(c echo.Context) error {
	var req processMessageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if strings.TrimSpace(req.ActorID) == "" {
		return apperrors.ValidationError("actor_id is required")
	}
	if req.Text == "" {
		return apperrors.ValidationError("text is required")
	}
	if len(req.Text) > maxMessageLength {
		return apperrors.ValidationError("text too long").
			WithContext("max_length", maxMessageLength)
	}

	locale := req.Locale
	if locale == "" {
		locale = s.config.DefaultLocale
	}

	result, reply := s.app.ProcessMessage(c.Request().Context(), req.ActorID, req.Text, locale)

	resp := processMessageResponse{
		Outcome:  result.Outcome,
		Target:   result.Target,
		Score:    result.Score,
		Reply:    reply,
		Degraded: result.StoreDegraded,
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write message response: %w", err)
	}
	return nil
}

func (s *Server) handleGetScore(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return apperrors.ValidationError("key is required")
	}

	score, err := s.app.Score(c.Request().Context(), key)
	if err != nil {
		return mapStoreError(err)
	}

	if err := c.JSON(http.StatusOK, scoreResponse{Key: key, Score: score}); err != nil {
		return fmt.Errorf("failed to write score response: %w", err)
	}
	return nil
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	prefix := c.QueryParam("prefix")

	targets, err := s.app.Leaderboard(c.Request().Context(), prefix)
	if err != nil {
		return mapStoreError(err)
	}

	resp := leaderboardResponse{Prefix: prefix, Targets: make([]scoreResponse, 0, len(targets))}
	for _, t := range targets {
		resp.Targets = append(resp.Targets, scoreResponse{Key: t.Key, Score: t.Score})
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write leaderboard response: %w", err)
	}
	return nil
}

func mapStoreError(err error) error {
	if errors.Is(err, karma.ErrStoreUnavailable) {
		return apperrors.UnavailableError("karma store unavailable", err)
	}
	return apperrors.InternalError("failed to read karma store", err)
}
