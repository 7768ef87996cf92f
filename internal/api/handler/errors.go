package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/lanova-arcade/internal/api/apierr"
)

// maxBodyBytes bounds request bodies; the largest valid one is a swap
const maxBodyBytes = 4 << 10

// WriteError writes err as a JSON error body with the mapped status
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates a 400 with the given message
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeBody reads a JSON request body into dst. On failure it writes the
// 400 itself and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return false
	}
	return true
}
