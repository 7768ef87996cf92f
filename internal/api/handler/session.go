package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lanova-arcade/internal/api/middleware"
	"github.com/mcoot/lanova-arcade/internal/api/request"
	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/api/sse"
	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/game"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	gameController *game.Controller
	hubManager     *sse.HubManager
	clock          clock.Clock
}

// NewSessionHandler creates a new session handler. hubManager may be nil, in
// which case the events stream is unavailable.
func NewSessionHandler(gameController *game.Controller, hubManager *sse.HubManager, clock clock.Clock) *SessionHandler {
	return &SessionHandler{
		gameController: gameController,
		hubManager:     hubManager,
		clock:          clock,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Mode == "" {
		WriteError(w, NewInvalidRequestError("mode is required"))
		return
	}

	session, err := h.gameController.CreateSession(r.Context(), player.ID, model.ModeID(req.Mode), req.Stepped)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(session, nil, h.clock.Now()))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	sessions, err := h.gameController.ListSessions(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := make([]response.SessionSummary, len(sessions))
	for i, s := range sessions {
		resp[i] = response.SessionSummaryFromModel(s)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	session, err := h.gameController.GetSession(r.Context(), sessionID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	st, err := h.gameController.Settlement(r.Context(), session)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session, st, h.clock.Now()))
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	id := sessionID(r)
	if err := h.gameController.DeleteSession(r.Context(), id, player.ID); err != nil {
		WriteError(w, err)
		return
	}
	if h.hubManager != nil {
		h.hubManager.RemoveHub(id)
	}
	response.NoContent(w)
}

// Start handles POST /api/v1/sessions/{id}/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	session, err := h.gameController.Start(r.Context(), sessionID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session, nil, h.clock.Now()))
}

// Select handles POST /api/v1/sessions/{id}/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SelectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.gameController.SelectCell(r.Context(), sessionID(r), player.ID, model.Position{Row: req.Row, Col: req.Col})
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeTurn(w, result)
}

// Swap handles POST /api/v1/sessions/{id}/swap
func (h *SessionHandler) Swap(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SwapRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.A == nil || req.B == nil {
		WriteError(w, NewInvalidRequestError("a and b are required"))
		return
	}

	a := model.Position{Row: req.A.Row, Col: req.A.Col}
	b := model.Position{Row: req.B.Row, Col: req.B.Col}
	result, err := h.gameController.AttemptSwap(r.Context(), sessionID(r), player.ID, a, b)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeTurn(w, result)
}

// Step handles POST /api/v1/sessions/{id}/step
func (h *SessionHandler) Step(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	result, err := h.gameController.Step(r.Context(), sessionID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeTurn(w, result)
}

// Abandon handles POST /api/v1/sessions/{id}/abandon
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	result, err := h.gameController.Abandon(r.Context(), sessionID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeTurn(w, result)
}

// Hint handles GET /api/v1/sessions/{id}/hint
func (h *SessionHandler) Hint(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	a, b, ok, err := h.gameController.Hint(r.Context(), sessionID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HintFromModel(a, b, ok))
}

// RetrySettlement handles POST /api/v1/sessions/{id}/settlement/retry.
// A ledger failure is still a 200: the recorded settlement carries the outcome.
func (h *SessionHandler) RetrySettlement(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	st, err := h.gameController.RetrySettlement(r.Context(), sessionID(r), player.ID)
	if err != nil && (st == nil || errors.Is(err, model.ErrAlreadySettled)) {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SettlementFromModel(st))
}

// Events handles GET /api/v1/sessions/{id}/events
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if h.hubManager == nil {
		WriteError(w, NewInvalidRequestError("Event streaming is disabled"))
		return
	}

	session, err := h.gameController.GetSession(r.Context(), sessionID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(session.ID)
	sse.ServeSSE(w, r, hub, player.ID)
}

func (h *SessionHandler) writeTurn(w http.ResponseWriter, result *game.TurnResult) {
	session := response.SessionFromModel(result.Session, result.Settlement, h.clock.Now())
	resp := response.TurnFromResult(session, result.Swapped, result.Steps, result.MoveScore, result.LevelUp, result.Settlement)
	response.JSON(w, http.StatusOK, resp)
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["id"])
}
