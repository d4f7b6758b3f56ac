package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCertificationNotFound = &Error{Code: ENOTFOUND, Message: "Certification not found"}
)

// Certification is a professional credential held by the user.
type Certification struct {
	ID            uuid.UUID  `json:"id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Issuer        string     `json:"issuer,omitempty"`
	IssuedOn      time.Time  `json:"issued_on"`
	ExpiresOn     *time.Time `json:"expires_on,omitempty"`
	CredentialURL string     `json:"credential_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CertificationService manages a user's certifications.
type CertificationService interface {
	CreateCertification(ctx context.Context, userID string, params CertificationParams) (*Certification, error)
	ListCertifications(ctx context.Context, userID string) ([]Certification, error)
	DeleteCertification(ctx context.Context, userID string, id uuid.UUID) error
}

// CertificationParams contains the writable certification fields.
type CertificationParams struct {
	Name          string
	Issuer        string
	IssuedOn      time.Time
	ExpiresOn     *time.Time
	CredentialURL string
}
