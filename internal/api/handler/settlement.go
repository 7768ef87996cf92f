package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/lanova-arcade/internal/api/middleware"
	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/services/game"
)

const defaultHistoryLimit = 50

// SettlementHandler serves the caller's award history
type SettlementHandler struct {
	gameController *game.Controller
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(gameController *game.Controller) *SettlementHandler {
	return &SettlementHandler{gameController: gameController}
}

// List handles GET /api/v1/settlements?limit=N
func (h *SettlementHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	sts, err := h.gameController.ListSettlements(r.Context(), player.ID, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SettlementsFromModel(sts))
}
