package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// AppointmentsHandler serves appointment scheduling.
type AppointmentsHandler struct {
	appointments domain.AppointmentService
}

// NewAppointmentsHandler creates a new appointments handler.
func NewAppointmentsHandler(appointments domain.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{appointments: appointments}
}

type appointmentRequest struct {
	ClientID *uuid.UUID `json:"client_id"`
	Title    string     `json:"title"`
	Location string     `json:"location"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   time.Time  `json:"ends_at"`
	Notes    string     `json:"notes"`
}

func (req appointmentRequest) params() domain.AppointmentParams {
	return domain.AppointmentParams{
		ClientID: req.ClientID,
		Title:    req.Title,
		Location: req.Location,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Notes:    req.Notes,
	}
}

// Create handles POST /api/appointments
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req appointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	appt, err := h.appointments.CreateAppointment(r.Context(), userID, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, appt)
}

// List handles GET /api/appointments?from=...&to=... (RFC 3339 bounds)
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, r, domain.Errorf(domain.EINVALID, "handler.appointments", "Invalid from, expected RFC 3339"))
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, r, domain.Errorf(domain.EINVALID, "handler.appointments", "Invalid to, expected RFC 3339"))
			return
		}
	}

	appts, err := h.appointments.ListAppointments(r.Context(), userID, from, to)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// Get handles GET /api/appointments/{id}
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	appt, err := h.appointments.GetAppointment(r.Context(), userID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, appt)
}

// Update handles PUT /api/appointments/{id}
func (h *AppointmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req appointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	appt, err := h.appointments.UpdateAppointment(r.Context(), userID, id, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, appt)
}

// Cancel handles POST /api/appointments/{id}/cancel
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.appointments.CancelAppointment(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Appointment cancelled."})
}

// Delete handles DELETE /api/appointments/{id}
func (h *AppointmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.appointments.DeleteAppointment(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Appointment deleted."})
}
