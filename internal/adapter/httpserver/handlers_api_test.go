package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasombra/rebot/internal/domain"
	"github.com/lasombra/rebot/internal/karma"
	"github.com/lasombra/rebot/internal/platform/config"
)

type stubApp struct {
	result    domain.Result
	reply     string
	score     int64
	scores    []domain.Target
	err       error
	gotText   string
	gotLocale string
}

func (s *stubApp) ProcessMessage(_ context.Context, _, text, locale string) (domain.Result, string) {
	s.gotText = text
	s.gotLocale = locale
	return s.result, s.reply
}

func (s *stubApp) Score(context.Context, string) (int64, error) {
	return s.score, s.err
}

func (s *stubApp) Leaderboard(context.Context, string) ([]domain.Target, error) {
	return s.scores, s.err
}

func newTestServer(t *testing.T, app appService) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:               "8080",
		DefaultLocale:      "pt-BR",
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewServer(cfg, logger, app, http.NotFoundHandler(), nil)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleProcessMessage_Applied(t *testing.T) {
	app := &stubApp{
		result: domain.Result{Outcome: domain.OutcomeApplied, Target: "test", Operator: domain.OperatorIncrement, Score: 1},
		reply:  "test has now 1 points of karma",
	}
	srv := newTestServer(t, app)

	rec := doJSON(t, srv, http.MethodPost, "/api/messages", `{"actor_id":"alice","text":"test++"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp processMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.OutcomeApplied, resp.Outcome)
	assert.Equal(t, "test", resp.Target)
	assert.Equal(t, int64(1), resp.Score)
	assert.Equal(t, "test has now 1 points of karma", resp.Reply)
	assert.Equal(t, "test++", app.gotText)
}

func TestHandleProcessMessage_LocalePassedThrough(t *testing.T) {
	app := &stubApp{result: domain.Result{Outcome: domain.OutcomeNoMatch}}
	srv := newTestServer(t, app)

	doJSON(t, srv, http.MethodPost, "/api/messages", `{"actor_id":"alice","text":"oi","locale":"en"}`)

	assert.Equal(t, "en", app.gotLocale)
}

func TestHandleProcessMessage_EmptyLocaleFallsBackToDefault(t *testing.T) {
	app := &stubApp{result: domain.Result{Outcome: domain.OutcomeNoMatch}}
	srv := newTestServer(t, app)

	doJSON(t, srv, http.MethodPost, "/api/messages", `{"actor_id":"alice","text":"oi"}`)

	assert.Equal(t, "pt-BR", app.gotLocale)
}

func TestHandleProcessMessage_NoMatchHasNoReply(t *testing.T) {
	app := &stubApp{result: domain.Result{Outcome: domain.OutcomeNoMatch}}
	srv := newTestServer(t, app)

	rec := doJSON(t, srv, http.MethodPost, "/api/messages", `{"actor_id":"alice","text":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "reply")
}

func TestHandleProcessMessage_MissingActor(t *testing.T) {
	srv := newTestServer(t, &stubApp{})

	rec := doJSON(t, srv, http.MethodPost, "/api/messages", `{"text":"test++"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "actor_id is required")
}

func TestHandleProcessMessage_MissingText(t *testing.T) {
	srv := newTestServer(t, &stubApp{})

	rec := doJSON(t, srv, http.MethodPost, "/api/messages", `{"actor_id":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text is required")
}

func TestHandleProcessMessage_TextTooLong(t *testing.T) {
	srv := newTestServer(t, &stubApp{})
	long := strings.Repeat("a", maxMessageLength+1)

	rec := doJSON(t, srv, http.MethodPost, "/api/messages", `{"actor_id":"alice","text":"`+long+`"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleProcessMessage_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, &stubApp{})

	rec := doJSON(t, srv, http.MethodPost, "/api/messages", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetScore(t *testing.T) {
	srv := newTestServer(t, &stubApp{score: 7})

	rec := doJSON(t, srv, http.MethodGet, "/api/karma/test", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp.Key)
	assert.Equal(t, int64(7), resp.Score)
}

func TestHandleGetScore_StoreUnavailable(t *testing.T) {
	srv := newTestServer(t, &stubApp{err: karma.ErrStoreUnavailable})

	rec := doJSON(t, srv, http.MethodGet, "/api/karma/test", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestHandleLeaderboard(t *testing.T) {
	srv := newTestServer(t, &stubApp{scores: []domain.Target{
		{Key: "team", Score: 5},
		{Key: "test", Score: 1},
	}})

	rec := doJSON(t, srv, http.MethodGet, "/api/karma?prefix=te", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp leaderboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "te", resp.Prefix)
	require.Len(t, resp.Targets, 2)
	assert.Equal(t, "team", resp.Targets[0].Key)
	assert.Equal(t, int64(5), resp.Targets[0].Score)
}

func TestHandleLeaderboard_EmptyResultIsEmptyArray(t *testing.T) {
	srv := newTestServer(t, &stubApp{})

	rec := doJSON(t, srv, http.MethodGet, "/api/karma?prefix=zz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"targets":[]`)
}
