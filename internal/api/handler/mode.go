package handler

import (
	"net/http"

	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/services/modes"
)

// ModeHandler lists the configured game modes
type ModeHandler struct {
	registry *modes.Registry
}

// NewModeHandler creates a new mode handler
func NewModeHandler(registry *modes.Registry) *ModeHandler {
	return &ModeHandler{registry: registry}
}

// List handles GET /api/v1/modes
func (h *ModeHandler) List(w http.ResponseWriter, _ *http.Request) {
	all := h.registry.List()
	resp := make([]response.Mode, len(all))
	for i, m := range all {
		resp[i] = response.ModeFromModel(m)
	}
	response.JSON(w, http.StatusOK, resp)
}
