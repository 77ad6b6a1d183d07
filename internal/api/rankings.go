package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// RankingEngine derives the best/worst leaderboards.
type RankingEngine interface {
	ComputeRankings() (*types.Rankings, error)
}

// RankingsHandler serves the daily leaderboard endpoint
type RankingsHandler struct {
	engine RankingEngine
	logger zerolog.Logger
}

// NewRankingsHandler creates a new RankingsHandler
func NewRankingsHandler(engine RankingEngine, logger zerolog.Logger) *RankingsHandler {
	return &RankingsHandler{
		engine: engine,
		logger: logger.With().Str("component", "rankings_handler").Logger(),
	}
}

// GetRankings returns the latest day's best/worst agents.
// GET /api/daily-rankings
func (h *RankingsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.engine.ComputeRankings()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute rankings")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rankings)
}
