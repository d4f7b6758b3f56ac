package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// CertificationService implements domain.CertificationService using PostgreSQL.
type CertificationService struct {
	db DB
}

var _ domain.CertificationService = (*CertificationService)(nil)

// NewCertificationService creates a new CertificationService instance.
func NewCertificationService(db DB) *CertificationService {
	return &CertificationService{db: db}
}

// CreateCertification records a credential for a user.
func (s *CertificationService) CreateCertification(ctx context.Context, userID string, params domain.CertificationParams) (*domain.Certification, error) {
	if params.Name == "" {
		return nil, domain.Errorf(domain.EINVALID, "certification.create", "name is required")
	}

	var c domain.Certification
	var expiresOn *time.Time
	err := s.db.QueryRow(ctx, `
		INSERT INTO certifications (user_id, name, issuer, issued_on, expires_on, credential_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, name, issuer, issued_on, expires_on, credential_url, created_at`,
		userID, params.Name, params.Issuer, params.IssuedOn, params.ExpiresOn, params.CredentialURL,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Issuer, &c.IssuedOn, &expiresOn, &c.CredentialURL, &c.CreatedAt)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "certification.create", "failed to create certification")
	}
	c.ExpiresOn = expiresOn
	return &c, nil
}

// ListCertifications lists a user's certifications, most recent first.
func (s *CertificationService) ListCertifications(ctx context.Context, userID string) ([]domain.Certification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, issuer, issued_on, expires_on, credential_url, created_at
		FROM certifications
		WHERE user_id = $1
		ORDER BY issued_on DESC`,
		userID)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "certification.list", "failed to list certifications")
	}
	defer rows.Close()

	var certs []domain.Certification
	for rows.Next() {
		var c domain.Certification
		var expiresOn *time.Time
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Issuer, &c.IssuedOn, &expiresOn, &c.CredentialURL, &c.CreatedAt); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, "certification.list", "failed to scan certification")
		}
		c.ExpiresOn = expiresOn
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

// DeleteCertification removes a credential.
func (s *CertificationService) DeleteCertification(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM certifications WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "certification.delete", "failed to delete certification")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCertificationNotFound
	}
	return nil
}
