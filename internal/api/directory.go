package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/fub"
	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// CRMClient is the slice of the FollowUpBoss client the read-through
// endpoints consume.
type CRMClient interface {
	FetchAgents(ctx context.Context) ([]types.Agent, error)
	FetchSmartLists(ctx context.Context) ([]types.SmartList, error)
	FetchPeople(ctx context.Context) ([]types.Person, error)
	FetchAppointments(ctx context.Context, startDate, endDate string) ([]types.Appointment, int, error)
	FetchAppointmentTypes(ctx context.Context) (json.RawMessage, error)
	FetchAppointmentOutcomes(ctx context.Context) (json.RawMessage, error)
}

// DirectoryHandler serves CRM read-through endpoints (users, smart
// lists, people). No caching: every request paginates the CRM afresh.
type DirectoryHandler struct {
	client CRMClient
	logger zerolog.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(client CRMClient, logger zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		client: client,
		logger: logger.With().Str("component", "directory_handler").Logger(),
	}
}

// GetUsers returns the agent id -> name map.
// GET /api/users
func (h *DirectoryHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	agents, err := h.client.FetchAgents(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch agents")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, fub.NameMap(agents))
}

// GetSmartLists returns the smart list id -> name map.
// GET /api/smartlists
func (h *DirectoryHandler) GetSmartLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.client.FetchSmartLists(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch smart lists")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, fub.SmartListMap(lists))
}

// GetPeople returns every person in the CRM.
// GET /api/people
func (h *DirectoryHandler) GetPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.client.FetchPeople(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch people")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if people == nil {
		people = []types.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}
