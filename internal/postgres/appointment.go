package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// AppointmentService implements domain.AppointmentService using PostgreSQL.
type AppointmentService struct {
	db DB
}

var _ domain.AppointmentService = (*AppointmentService)(nil)

// NewAppointmentService creates a new AppointmentService instance.
func NewAppointmentService(db DB) *AppointmentService {
	return &AppointmentService{db: db}
}

const appointmentColumns = `id, user_id, client_id, title, location, starts_at, ends_at, status, notes, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*domain.Appointment, error) {
	var a domain.Appointment
	var clientID uuid.NullUUID
	err := row.Scan(&a.ID, &a.UserID, &clientID, &a.Title, &a.Location,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		a.ClientID = &clientID.UUID
	}
	return &a, nil
}

func validateAppointment(params domain.AppointmentParams, op string) error {
	if params.Title == "" {
		return domain.Errorf(domain.EINVALID, op, "title is required")
	}
	if !params.EndsAt.After(params.StartsAt) {
		return domain.ErrAppointmentTimes
	}
	return nil
}

// CreateAppointment creates an appointment for a user.
func (s *AppointmentService) CreateAppointment(ctx context.Context, userID string, params domain.AppointmentParams) (*domain.Appointment, error) {
	if err := validateAppointment(params, "appointment.create"); err != nil {
		return nil, err
	}

	var clientID uuid.NullUUID
	if params.ClientID != nil {
		clientID = uuid.NullUUID{UUID: *params.ClientID, Valid: true}
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO appointments (user_id, client_id, title, location, starts_at, ends_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+appointmentColumns,
		userID, clientID, params.Title, params.Location, params.StartsAt, params.EndsAt, params.Notes)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "appointment.create", "failed to create appointment")
	}
	return appt, nil
}

// GetAppointment retrieves an appointment owned by the user.
func (s *AppointmentService) GetAppointment(ctx context.Context, userID string, id uuid.UUID) (*domain.Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE id = $1 AND user_id = $2`,
		id, userID)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, notFound(err, domain.ErrAppointmentNotFound, "appointment.get")
	}
	return appt, nil
}

// ListAppointments lists appointments starting within [from, to).
func (s *AppointmentService) ListAppointments(ctx context.Context, userID string, from, to time.Time) ([]domain.Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE user_id = $1
			AND ($2::timestamptz IS NULL OR starts_at >= $2)
			AND ($3::timestamptz IS NULL OR starts_at < $3)
		ORDER BY starts_at`,
		userID, nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "appointment.list", "failed to list appointments")
	}
	defer rows.Close()

	var appts []domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, "appointment.list", "failed to scan appointment")
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

// UpdateAppointment updates an appointment's writable fields.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, userID string, id uuid.UUID, params domain.AppointmentParams) (*domain.Appointment, error) {
	if err := validateAppointment(params, "appointment.update"); err != nil {
		return nil, err
	}

	var clientID uuid.NullUUID
	if params.ClientID != nil {
		clientID = uuid.NullUUID{UUID: *params.ClientID, Valid: true}
	}

	row := s.db.QueryRow(ctx, `
		UPDATE appointments SET
			client_id = $3, title = $4, location = $5, starts_at = $6, ends_at = $7,
			notes = $8, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+appointmentColumns,
		id, userID, clientID, params.Title, params.Location, params.StartsAt, params.EndsAt, params.Notes)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, notFound(err, domain.ErrAppointmentNotFound, "appointment.update")
	}
	return appt, nil
}

// CancelAppointment marks a scheduled appointment cancelled.
func (s *AppointmentService) CancelAppointment(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = 'scheduled'`,
		id, userID)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "appointment.cancel", "failed to cancel appointment")
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already past scheduled; disambiguate for the caller.
		if _, getErr := s.GetAppointment(ctx, userID, id); getErr != nil {
			return getErr
		}
		return domain.ErrAppointmentCancelled
	}
	return nil
}

// DeleteAppointment removes an appointment.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "appointment.delete", "failed to delete appointment")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

// nullableTime maps the zero time onto SQL NULL for open-ended range bounds.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
