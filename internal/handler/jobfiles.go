package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// JobFilesHandler serves job file tracking.
type JobFilesHandler struct {
	jobFiles domain.JobFileService
}

// NewJobFilesHandler creates a new job files handler.
func NewJobFilesHandler(jobFiles domain.JobFileService) *JobFilesHandler {
	return &JobFilesHandler{jobFiles: jobFiles}
}

type jobFileRequest struct {
	ClientID      uuid.UUID `json:"client_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	AttachmentURL string    `json:"attachment_url"`
}

func (req jobFileRequest) params() domain.JobFileParams {
	return domain.JobFileParams{
		ClientID:      req.ClientID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		AttachmentURL: req.AttachmentURL,
	}
}

// Create handles POST /api/jobs
func (h *JobFilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req jobFileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	jf, err := h.jobFiles.CreateJobFile(r.Context(), userID, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, jf)
}

// List handles GET /api/jobs?status=active
func (h *JobFilesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	files, err := h.jobFiles.ListJobFiles(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"jobs": files})
}

// Get handles GET /api/jobs/{id}
func (h *JobFilesHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	jf, err := h.jobFiles.GetJobFile(r.Context(), userID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, jf)
}

// Update handles PUT /api/jobs/{id}
func (h *JobFilesHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req jobFileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	jf, err := h.jobFiles.UpdateJobFile(r.Context(), userID, id, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, jf)
}

// Delete handles DELETE /api/jobs/{id}
func (h *JobFilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.jobFiles.DeleteJobFile(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Job file deleted."})
}
