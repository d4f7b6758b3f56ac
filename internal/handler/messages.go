package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// MessagesHandler serves the client correspondence log.
type MessagesHandler struct {
	messages domain.MessageService
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(messages domain.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

type messageRequest struct {
	ClientID  uuid.UUID `json:"client_id"`
	Direction string    `json:"direction"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}

// Create handles POST /api/messages
func (h *MessagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	msg, err := h.messages.CreateMessage(r.Context(), userID, domain.MessageParams{
		ClientID:  req.ClientID,
		Direction: req.Direction,
		Subject:   req.Subject,
		Body:      req.Body,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// List handles GET /api/messages?client_id=...
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var clientID uuid.UUID
	if v := r.URL.Query().Get("client_id"); v != "" {
		clientID, err = uuid.Parse(v)
		if err != nil {
			respondError(w, r, domain.Errorf(domain.EINVALID, "handler.messages", "Invalid client_id"))
			return
		}
	}

	msgs, err := h.messages.ListMessages(r.Context(), userID, clientID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// MarkRead handles POST /api/messages/{id}/read
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := h.messages.MarkMessageRead(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Message marked read."})
}
