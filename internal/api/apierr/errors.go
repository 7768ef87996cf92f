package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidPosition    = "INVALID_POSITION"
	CodeNotAdjacent        = "NOT_ADJACENT"
	CodeInvalidMove        = "INVALID_MOVE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeUnknownMode        = "UNKNOWN_MODE"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeSessionNotActive   = "SESSION_NOT_ACTIVE"
	CodeSessionActive      = "SESSION_ACTIVE"
	CodeProcessing         = "PROCESSING"
	CodeNothingToResolve   = "NOTHING_TO_RESOLVE"
	CodeSettlementNotFound = "SETTLEMENT_NOT_FOUND"
	CodeAlreadySettled     = "ALREADY_SETTLED"
	CodeNothingToSettle    = "NOTHING_TO_SETTLE"
	CodeLedgerUnavailable  = "LEDGER_UNAVAILABLE"
	CodeLedgerRejected     = "LEDGER_REJECTED"
	CodeUnsettledRun       = "UNSETTLED_RUN"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status code an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Session lifecycle
	case errors.Is(err, model.ErrUnknownMode):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownMode, "Unknown game mode"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrNotSessionOwner):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Session belongs to another player"}}
	case errors.Is(err, model.ErrSessionNotActive):
		return &httpError{http.StatusConflict, APIError{CodeSessionNotActive, "Session is not active"}}
	case errors.Is(err, model.ErrSessionActive):
		return &httpError{http.StatusConflict, APIError{CodeSessionActive, "Session is already active"}}
	case errors.Is(err, model.ErrProcessing):
		return &httpError{http.StatusConflict, APIError{CodeProcessing, "A cascade is still resolving"}}
	case errors.Is(err, model.ErrNothingToResolve):
		return &httpError{http.StatusConflict, APIError{CodeNothingToResolve, "No cascade is pending"}}

	// Moves
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPosition, "Invalid board position"}}
	case errors.Is(err, model.ErrNotAdjacent):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeNotAdjacent, "Cells are not adjacent"}}
	case errors.Is(err, model.ErrInvalidMove):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidMove, "Swap does not make a match"}}

	// Settlement
	case errors.Is(err, model.ErrSettlementNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSettlementNotFound, "Settlement not found"}}
	case errors.Is(err, model.ErrAlreadySettled):
		return &httpError{http.StatusConflict, APIError{CodeAlreadySettled, "Settlement is already final"}}
	case errors.Is(err, model.ErrNothingToSettle):
		return &httpError{http.StatusConflict, APIError{CodeNothingToSettle, "Session has no finished run"}}
	case errors.Is(err, model.ErrUnsettledRun):
		return &httpError{http.StatusConflict, APIError{CodeUnsettledRun, "Retry the last run's settlement first"}}
	case errors.Is(err, model.ErrLedgerRejected):
		return &httpError{http.StatusConflict, APIError{CodeLedgerRejected, "Ledger rejected the award"}}
	case errors.Is(err, model.ErrLedgerCallFailed):
		return &httpError{http.StatusBadGateway, APIError{CodeLedgerUnavailable, "Ledger is unavailable, retry later"}}

	// Auth
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}
	case errors.Is(err, auth.ErrNoSecret):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeInternalError, "Token signing is not configured"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
