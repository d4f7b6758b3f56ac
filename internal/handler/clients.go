package handler

import (
	"net/http"

	"github.com/dorianvale/praxis/internal/domain"
)

// ClientsHandler serves client CRUD.
type ClientsHandler struct {
	clients domain.ClientService
}

// NewClientsHandler creates a new clients handler.
func NewClientsHandler(clients domain.ClientService) *ClientsHandler {
	return &ClientsHandler{clients: clients}
}

type clientRequest struct {
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name"`
	Email        string `json:"email"`
	BillingEmail string `json:"billing_email"`
	Phone        string `json:"phone"`
	Notes        string `json:"notes"`
}

func (req clientRequest) params() domain.ClientParams {
	return domain.ClientParams{
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		Email:        req.Email,
		BillingEmail: req.BillingEmail,
		Phone:        req.Phone,
		Notes:        req.Notes,
	}
}

// Create handles POST /api/clients
func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.CompanyName == "" && req.ContactName == "" {
		respondError(w, r, domain.Errorf(domain.EINVALID, "handler.clients", "A company or contact name is required"))
		return
	}

	client, err := h.clients.CreateClient(r.Context(), userID, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

// List handles GET /api/clients?include_archived=true
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"
	clients, err := h.clients.ListClients(r.Context(), userID, includeArchived)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// Get handles GET /api/clients/{id}
func (h *ClientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	clientID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	client, err := h.clients.GetClient(r.Context(), userID, clientID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Update handles PUT /api/clients/{id}
func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	clientID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	client, err := h.clients.UpdateClient(r.Context(), userID, clientID, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Archive handles DELETE /api/clients/{id}
func (h *ClientsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	clientID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.clients.ArchiveClient(r.Context(), userID, clientID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Client archived."})
}
