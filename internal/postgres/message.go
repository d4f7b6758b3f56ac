package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// MessageService implements domain.MessageService using PostgreSQL.
type MessageService struct {
	db DB
}

var _ domain.MessageService = (*MessageService)(nil)

// NewMessageService creates a new MessageService instance.
func NewMessageService(db DB) *MessageService {
	return &MessageService{db: db}
}

// CreateMessage appends an entry to the correspondence log.
func (s *MessageService) CreateMessage(ctx context.Context, userID string, params domain.MessageParams) (*domain.Message, error) {
	if params.Direction != domain.MessageInbound && params.Direction != domain.MessageOutbound {
		return nil, domain.Errorf(domain.EINVALID, "message.create", "invalid direction: %s", params.Direction)
	}
	if params.Body == "" {
		return nil, domain.Errorf(domain.EINVALID, "message.create", "body is required")
	}

	sentAt := params.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}

	// Outbound entries are authored here, so they start read.
	read := params.Direction == domain.MessageOutbound

	var m domain.Message
	err := s.db.QueryRow(ctx, `
		INSERT INTO messages (user_id, client_id, direction, subject, body, sent_at, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, client_id, direction, subject, body, sent_at, read, created_at`,
		userID, params.ClientID, params.Direction, params.Subject, params.Body, sentAt, read,
	).Scan(&m.ID, &m.UserID, &m.ClientID, &m.Direction, &m.Subject, &m.Body, &m.SentAt, &m.Read, &m.CreatedAt)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "message.create", "failed to create message")
	}
	return &m, nil
}

// ListMessages lists messages, newest first. Zero clientID lists all clients.
func (s *MessageService) ListMessages(ctx context.Context, userID string, clientID uuid.UUID) ([]domain.Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, client_id, direction, subject, body, sent_at, read, created_at
		FROM messages
		WHERE user_id = $1 AND ($2::uuid = '00000000-0000-0000-0000-000000000000' OR client_id = $2)
		ORDER BY sent_at DESC`,
		userID, clientID)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "message.list", "failed to list messages")
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.ClientID, &m.Direction, &m.Subject, &m.Body, &m.SentAt, &m.Read, &m.CreatedAt); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, "message.list", "failed to scan message")
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkMessageRead flags a message as read.
func (s *MessageService) MarkMessageRead(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE messages SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "message.read", "failed to mark message read")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}
