package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/fub"
	"github.com/slzapp/slz-dashboard/backend/internal/storage"
)

// MetricsHandler serves the combined dashboard payload: logged totals
// alongside the current agent and smart list directories.
type MetricsHandler struct {
	client CRMClient
	store  storage.Store
	logger zerolog.Logger
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(client CRMClient, store storage.Store, logger zerolog.Logger) *MetricsHandler {
	return &MetricsHandler{
		client: client,
		store:  store,
		logger: logger.With().Str("component", "metrics_handler").Logger(),
	}
}

// metricPoint is one chartable datum per log entry.
type metricPoint struct {
	Date    time.Time `json:"date"`
	AgentID string    `json:"agentId"`
	Total   int       `json:"total"`
}

// GetMetrics returns daily totals plus the agent and smart list maps.
// GET /api/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	agents, err := h.client.FetchAgents(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch agents")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lists, err := h.client.FetchSmartLists(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch smart lists")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logs, err := h.store.ListDailyLogs()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list daily logs")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics := make([]metricPoint, 0, len(logs))
	for _, entry := range logs {
		metrics = append(metrics, metricPoint{
			Date:    entry.Date,
			AgentID: entry.AgentID,
			Total:   entry.Total,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics":    metrics,
		"agents":     fub.NameMap(agents),
		"smartLists": fub.SmartListMap(lists),
	})
}
