package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lanova-arcade/internal/api/handler"
	"github.com/mcoot/lanova-arcade/internal/api/middleware"
	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/api/sse"
	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/services/auth"
	"github.com/mcoot/lanova-arcade/internal/services/game"
	"github.com/mcoot/lanova-arcade/internal/services/modes"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Clock          clock.Clock
	AuthService    auth.ServiceInterface
	GameController *game.Controller
	Modes          *modes.Registry
	HubManager     *sse.HubManager // optional, enables the events stream
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.GameController, cfg.HubManager, cfg.Clock)
	settlementHandler := handler.NewSettlementHandler(cfg.GameController)
	modeHandler := handler.NewModeHandler(cfg.Modes)

	authMiddleware := middleware.Auth(cfg.AuthService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger, cfg.Clock))

	// Public routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/modes", modeHandler.List).Methods(http.MethodGet)

	// Session routes (all require auth)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("", sessionHandler.List).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", sessionHandler.Delete).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}/start", sessionHandler.Start).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/select", sessionHandler.Select).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/swap", sessionHandler.Swap).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/step", sessionHandler.Step).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/hint", sessionHandler.Hint).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/abandon", sessionHandler.Abandon).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/settlement/retry", sessionHandler.RetrySettlement).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/events", sessionHandler.Events).Methods(http.MethodGet)

	settlements := api.PathPrefix("/settlements").Subrouter()
	settlements.Use(authMiddleware)
	settlements.HandleFunc("", settlementHandler.List).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
