package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// SelectionStore persists the selection singleton.
type SelectionStore interface {
	Save(sel types.Selection) error
	Load() (types.Selection, error)
}

// SelectionsHandler serves the saved-selection endpoints
type SelectionsHandler struct {
	store  SelectionStore
	logger zerolog.Logger
}

// NewSelectionsHandler creates a new SelectionsHandler
func NewSelectionsHandler(store SelectionStore, logger zerolog.Logger) *SelectionsHandler {
	return &SelectionsHandler{
		store:  store,
		logger: logger.With().Str("component", "selections_handler").Logger(),
	}
}

// SaveSelections overwrites the saved selection.
// POST /api/save-selections
func (h *SelectionsHandler) SaveSelections(w http.ResponseWriter, r *http.Request) {
	var req types.Selection
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Save(req); err != nil {
		h.logger.Error().Err(err).Msg("failed to save selections")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetSelections returns the saved selection, empty sets if none.
// GET /api/get-selections
func (h *SelectionsHandler) GetSelections(w http.ResponseWriter, r *http.Request) {
	sel, err := h.store.Load()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load selections")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sel)
}
