package postgres

import (
	"context"

	"github.com/dorianvale/praxis/internal/domain"
)

// ProfileService implements domain.ProfileService using PostgreSQL.
type ProfileService struct {
	db DB
}

var _ domain.ProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance.
func NewProfileService(db DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile retrieves the profile for a user.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := s.db.QueryRow(ctx, `
		SELECT user_id, display_name, business_name, email, send_overdue_reminders, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.DisplayName, &p.BusinessName, &p.Email, &p.SendOverdueReminders, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, domain.ErrProfileNotFound, "profile.get")
	}
	return &p, nil
}

// UpsertProfile creates or updates the profile for a user.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID string, params domain.UpsertProfileParams) (*domain.Profile, error) {
	var p domain.Profile
	err := s.db.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, display_name, business_name, email, send_overdue_reminders)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			business_name = EXCLUDED.business_name,
			email = EXCLUDED.email,
			send_overdue_reminders = EXCLUDED.send_overdue_reminders,
			updated_at = now()
		RETURNING user_id, display_name, business_name, email, send_overdue_reminders, created_at, updated_at`,
		userID, params.DisplayName, params.BusinessName, params.Email, params.SendOverdueReminders,
	).Scan(&p.UserID, &p.DisplayName, &p.BusinessName, &p.Email, &p.SendOverdueReminders, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "profile.upsert", "failed to save profile")
	}
	return &p, nil
}
