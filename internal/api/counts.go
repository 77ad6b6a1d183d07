package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// CountsComputer computes the agent/smart-list count matrix.
type CountsComputer interface {
	ComputeCounts(ctx context.Context, agentIDs, smartListIDs []string) (*types.CountsSnapshot, error)
}

// WriteCycle runs the full daily write-cycle and returns the snapshot.
type WriteCycle interface {
	Run(ctx context.Context, agentIDs, smartListIDs []string) (*types.CountsSnapshot, error)
}

// SelectionSource loads the saved selection.
type SelectionSource interface {
	Load() (types.Selection, error)
}

// CountsHandler serves the count matrix endpoints
type CountsHandler struct {
	counter    CountsComputer
	cycle      WriteCycle
	selections SelectionSource
	logger     zerolog.Logger
}

// NewCountsHandler creates a new CountsHandler
func NewCountsHandler(counter CountsComputer, cycle WriteCycle, selections SelectionSource, logger zerolog.Logger) *CountsHandler {
	return &CountsHandler{
		counter:    counter,
		cycle:      cycle,
		selections: selections,
		logger:     logger.With().Str("component", "counts_handler").Logger(),
	}
}

// GetCounts computes the matrix for the currently saved selection
// without persisting anything.
// GET /api/agent-smartlist-counts
func (h *CountsHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selections.Load()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load selections")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snapshot, err := h.counter.ComputeCounts(r.Context(), sel.AgentIDs, sel.SmartListIDs)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute counts")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// PostSelectedCounts computes the matrix for the posted selection and
// runs the full write-cycle: the day's previous entries are replaced
// with this run's results.
// POST /api/selected-counts
func (h *CountsHandler) PostSelectedCounts(w http.ResponseWriter, r *http.Request) {
	var req types.Selection
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Info().
		Int("agents", len(req.AgentIDs)).
		Int("smart_lists", len(req.SmartListIDs)).
		Msg("interactive write-cycle requested")

	snapshot, err := h.cycle.Run(r.Context(), req.AgentIDs, req.SmartListIDs)
	if err != nil {
		h.logger.Error().Err(err).Msg("write-cycle failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
