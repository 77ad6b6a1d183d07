package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/storage"
	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// LogsHandler serves persisted daily log entries
type LogsHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewLogsHandler creates a new LogsHandler
func NewLogsHandler(store storage.Store, logger zerolog.Logger) *LogsHandler {
	return &LogsHandler{
		store:  store,
		logger: logger.With().Str("component", "logs_handler").Logger(),
	}
}

// GetDailyLogs returns every log entry, newest first.
// GET /api/daily-logs (also aliased as GET /api/logs)
func (h *LogsHandler) GetDailyLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.ListDailyLogs()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list daily logs")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if logs == nil {
		logs = []types.DailyLogEntry{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// DeleteDailyLogs wipes every log entry. Irreversible.
// DELETE /api/daily-logs
func (h *LogsHandler) DeleteDailyLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAllLogs(); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete daily logs")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Msg("all daily logs cleared")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetAgentLogs returns one agent's entries in ascending date order for
// trend charts, plus the agent's name resolved from the entries.
// GET /api/agent-logs/{agentId}
func (h *LogsHandler) GetAgentLogs(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "agentId is required")
		return
	}

	logs, err := h.store.GetAgentDailyLogs(agentID)
	if err != nil {
		h.logger.Error().Err(err).Str("agent_id", agentID).Msg("failed to get agent logs")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(logs) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no logs found for this agent"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": logs,
		"name": logs[0].AgentName,
	})
}
