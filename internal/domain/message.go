package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message directions.
const (
	MessageInbound  = "inbound"
	MessageOutbound = "outbound"
)

var (
	ErrMessageNotFound = &Error{Code: ENOTFOUND, Message: "Message not found"}
)

// Message is one entry in the correspondence log with a client.
type Message struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	ClientID  uuid.UUID `json:"client_id"`
	Direction string    `json:"direction"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageService manages a user's client correspondence log.
type MessageService interface {
	CreateMessage(ctx context.Context, userID string, params MessageParams) (*Message, error)

	// ListMessages lists messages, newest first. Zero clientID lists all.
	ListMessages(ctx context.Context, userID string, clientID uuid.UUID) ([]Message, error)

	MarkMessageRead(ctx context.Context, userID string, id uuid.UUID) error
}

// MessageParams contains the writable message fields.
type MessageParams struct {
	ClientID  uuid.UUID
	Direction string
	Subject   string
	Body      string
	SentAt    time.Time
}
