package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lanova-arcade/internal/api/middleware"
	"github.com/mcoot/lanova-arcade/internal/dependencies/mocks"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/auth"
	"github.com/mcoot/lanova-arcade/internal/testutil"
)

type stubVerifier struct {
	player *model.Player
}

func (v stubVerifier) ValidateToken(token string) (*model.Player, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return v.player, nil
}

func (v stubVerifier) Issue(model.Player) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not supported")
}

func TestLoggingLevelsAndRoute(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	clk := mocks.NewMockClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))

	r := mux.NewRouter()
	r.Use(middleware.Logging(logger, clk))
	r.HandleFunc("/api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("/api/v1/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.HandleFunc("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for _, path := range []string{"/api/v1/health", "/api/v1/sessions/abc", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := logs.String()
	assert.Contains(t, out, `"level":"DEBUG","msg":"http request"`)
	assert.Contains(t, out, `"level":"WARN","msg":"http request"`)
	assert.Contains(t, out, `"level":"ERROR","msg":"http request"`)
	assert.Contains(t, out, `"route":"/api/v1/sessions/{id}"`)
	assert.Contains(t, out, `"path":"/api/v1/sessions/abc"`)
	assert.Contains(t, out, `"component":"api"`)
}

func TestLoggingKeepsFlusher(t *testing.T) {
	logger, _ := testutil.CaptureLogger()
	clk := mocks.NewMockClock(time.Now())

	var flushable bool
	h := middleware.Logging(logger, clk)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, flushable = w.(http.Flusher)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, flushable)
}

func TestRecoveryWritesJSON(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := middleware.Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, logs.String(), "kaboom")
}

func TestAuth(t *testing.T) {
	player := &model.Player{ID: "P1", Role: "user"}
	var seen *model.Player
	h := middleware.Auth(stubVerifier{player: player})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetPlayer(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, model.PlayerID("P1"), seen.ID)
	})

	t.Run("query parameter for event streams", func(t *testing.T) {
		seen = nil
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?access_token=good", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
	})
}
