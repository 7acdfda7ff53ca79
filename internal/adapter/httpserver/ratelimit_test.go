package httpserver

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasombra/rebot/internal/platform/config"
)

func TestRateLimiter_DeniesBeyondBurst(t *testing.T) {
	cfg := &config.Config{
		Port:               "8080",
		DefaultLocale:      "en",
		RateLimitPerSecond: 1,
		RateLimitBurst:     1,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv := NewServer(cfg, logger, &stubApp{}, http.NotFoundHandler(), nil)

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/karma/test", nil)
		req.Header.Set("X-Real-IP", "203.0.113.9")
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			// Denials carry the structured error body, not a bare string.
			assert.Contains(t, rec.Body.String(), `"type":"unavailable"`)
			assert.Contains(t, rec.Body.String(), "rate limit exceeded")
		}
	}

	require.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[1])
}

func TestRateLimiter_DoesNotThrottleHealthProbes(t *testing.T) {
	cfg := &config.Config{
		Port:               "8080",
		DefaultLocale:      "en",
		RateLimitPerSecond: 1,
		RateLimitBurst:     1,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv := NewServer(cfg, logger, &stubApp{}, http.NotFoundHandler(), nil)

	for range 5 {
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
