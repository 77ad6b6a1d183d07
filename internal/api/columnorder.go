package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/storage"
	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// ColumnOrderHandler persists per-user dashboard column ordering
type ColumnOrderHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewColumnOrderHandler creates a new ColumnOrderHandler
func NewColumnOrderHandler(store storage.Store, logger zerolog.Logger) *ColumnOrderHandler {
	return &ColumnOrderHandler{
		store:  store,
		logger: logger.With().Str("component", "column_order_handler").Logger(),
	}
}

// SaveColumnOrder upserts a user's column order.
// POST /api/save-column-order
func (h *ColumnOrderHandler) SaveColumnOrder(w http.ResponseWriter, r *http.Request) {
	var req types.ColumnOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.store.SaveColumnOrder(req); err != nil {
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to save column order")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetColumnOrder returns a user's saved column order, empty if none.
// GET /api/get-column-order/{userId}
func (h *ColumnOrderHandler) GetColumnOrder(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	order, err := h.store.GetColumnOrder(userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get column order")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if order == nil {
		order = []string{}
	}
	writeJSON(w, http.StatusOK, order)
}
