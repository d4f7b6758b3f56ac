package handler

import (
	"net/http"

	"github.com/dorianvale/praxis/internal/domain"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	profiles domain.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles domain.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

type upsertProfileRequest struct {
	DisplayName          string `json:"display_name"`
	BusinessName         string `json:"business_name"`
	Email                string `json:"email"`
	SendOverdueReminders bool   `json:"send_overdue_reminders"`
}

// Upsert handles PUT /api/profile
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req upsertProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.DisplayName == "" {
		respondError(w, r, domain.Errorf(domain.EINVALID, "handler.profile", "Display name is required"))
		return
	}

	profile, err := h.profiles.UpsertProfile(r.Context(), userID, domain.UpsertProfileParams{
		DisplayName:          req.DisplayName,
		BusinessName:         req.BusinessName,
		Email:                req.Email,
		SendOverdueReminders: req.SendOverdueReminders,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
