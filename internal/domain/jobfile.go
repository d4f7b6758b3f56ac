package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job file statuses.
const (
	JobFileStatusOpen       = "open"
	JobFileStatusInProgress = "in_progress"
	JobFileStatusDone       = "done"
	JobFileStatusArchived   = "archived"
)

var (
	ErrJobFileNotFound = &Error{Code: ENOTFOUND, Message: "Job file not found"}
)

// JobFile tracks a piece of work for a client. AttachmentURL is an opaque
// reference into external file storage; signed-URL issuance happens there.
type JobFile struct {
	ID            uuid.UUID `json:"id"`
	UserID        string    `json:"user_id"`
	ClientID      uuid.UUID `json:"client_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// JobFileService manages a user's job files.
type JobFileService interface {
	CreateJobFile(ctx context.Context, userID string, params JobFileParams) (*JobFile, error)
	GetJobFile(ctx context.Context, userID string, id uuid.UUID) (*JobFile, error)
	ListJobFiles(ctx context.Context, userID string, status string) ([]JobFile, error)
	UpdateJobFile(ctx context.Context, userID string, id uuid.UUID, params JobFileParams) (*JobFile, error)
	DeleteJobFile(ctx context.Context, userID string, id uuid.UUID) error
}

// JobFileParams contains the writable job file fields.
type JobFileParams struct {
	ClientID      uuid.UUID
	Title         string
	Description   string
	Status        string
	AttachmentURL string
}
