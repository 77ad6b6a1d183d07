package api

import (
	"net/http"

	"github.com/rs/zerolog"
)

// AppointmentsHandler serves CRM appointment read-through endpoints
type AppointmentsHandler struct {
	client CRMClient
	logger zerolog.Logger
}

// NewAppointmentsHandler creates a new AppointmentsHandler
func NewAppointmentsHandler(client CRMClient, logger zerolog.Logger) *AppointmentsHandler {
	return &AppointmentsHandler{
		client: client,
		logger: logger.With().Str("component", "appointments_handler").Logger(),
	}
}

// GetAppointments returns appointments, optionally bounded by
// startDate/endDate query parameters (YYYY-MM-DD).
// GET /api/appointments
func (h *AppointmentsHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")

	appointments, total, err := h.client.FetchAppointments(r.Context(), startDate, endDate)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch appointments")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(appointments) == 0 {
		writeError(w, http.StatusNotFound, "no appointments found matching the criteria")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"total":        total,
	})
}

// GetAppointmentTypes passes the CRM's appointment type catalog through.
// GET /api/appointment-types
func (h *AppointmentsHandler) GetAppointmentTypes(w http.ResponseWriter, r *http.Request) {
	payload, err := h.client.FetchAppointmentTypes(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch appointment types")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// GetAppointmentOutcomes passes the CRM's appointment outcome catalog through.
// GET /api/appointment-outcomes
func (h *AppointmentsHandler) GetAppointmentOutcomes(w http.ResponseWriter, r *http.Request) {
	payload, err := h.client.FetchAppointmentOutcomes(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch appointment outcomes")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
