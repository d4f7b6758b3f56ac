package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// ClientService implements domain.ClientService using PostgreSQL.
type ClientService struct {
	db DB
}

var _ domain.ClientService = (*ClientService)(nil)

// NewClientService creates a new ClientService instance.
func NewClientService(db DB) *ClientService {
	return &ClientService{db: db}
}

const clientColumns = `id, user_id, company_name, contact_name, email, billing_email, phone, notes, archived, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.UserID, &c.CompanyName, &c.ContactName, &c.Email,
		&c.BillingEmail, &c.Phone, &c.Notes, &c.Archived, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateClient creates a client for a user.
func (s *ClientService) CreateClient(ctx context.Context, userID string, params domain.ClientParams) (*domain.Client, error) {
	if params.CompanyName == "" && params.ContactName == "" {
		return nil, domain.Errorf(domain.EINVALID, "client.create", "company name or contact name is required")
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO clients (user_id, company_name, contact_name, email, billing_email, phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		userID, params.CompanyName, params.ContactName, params.Email, params.BillingEmail, params.Phone, params.Notes)

	client, err := scanClient(row)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "client.create", "failed to create client")
	}
	return client, nil
}

// GetClient retrieves a client owned by the user.
func (s *ClientService) GetClient(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE id = $1 AND user_id = $2`,
		clientID, userID)

	client, err := scanClient(row)
	if err != nil {
		return nil, notFound(err, domain.ErrClientNotFound, "client.get")
	}
	return client, nil
}

// ListClients lists a user's clients, active first, alphabetical.
func (s *ClientService) ListClients(ctx context.Context, userID string, includeArchived bool) ([]domain.Client, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE user_id = $1 AND (archived = FALSE OR $2)
		ORDER BY archived, company_name, contact_name`,
		userID, includeArchived)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "client.list", "failed to list clients")
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, "client.list", "failed to scan client")
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// UpdateClient updates a client's writable fields.
func (s *ClientService) UpdateClient(ctx context.Context, userID string, clientID uuid.UUID, params domain.ClientParams) (*domain.Client, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE clients SET
			company_name = $3, contact_name = $4, email = $5,
			billing_email = $6, phone = $7, notes = $8, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+clientColumns,
		clientID, userID, params.CompanyName, params.ContactName, params.Email,
		params.BillingEmail, params.Phone, params.Notes)

	client, err := scanClient(row)
	if err != nil {
		return nil, notFound(err, domain.ErrClientNotFound, "client.update")
	}
	return client, nil
}

// ArchiveClient soft-deletes a client.
func (s *ClientService) ArchiveClient(ctx context.Context, userID string, clientID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE clients SET archived = TRUE, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		clientID, userID)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "client.archive", "failed to archive client")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
