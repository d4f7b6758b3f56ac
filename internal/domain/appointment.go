package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

var (
	ErrAppointmentNotFound  = &Error{Code: ENOTFOUND, Message: "Appointment not found"}
	ErrAppointmentCancelled = &Error{Code: ECONFLICT, Message: "Appointment already cancelled"}
	ErrAppointmentTimes     = &Error{Code: EINVALID, Message: "Appointment end must be after start"}
)

// Appointment is a scheduled engagement, optionally tied to a client.
type Appointment struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"user_id"`
	ClientID  *uuid.UUID `json:"client_id,omitempty"`
	Title     string     `json:"title"`
	Location  string     `json:"location,omitempty"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    time.Time  `json:"ends_at"`
	Status    string     `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AppointmentService manages a user's appointments.
type AppointmentService interface {
	CreateAppointment(ctx context.Context, userID string, params AppointmentParams) (*Appointment, error)
	GetAppointment(ctx context.Context, userID string, id uuid.UUID) (*Appointment, error)

	// ListAppointments lists appointments starting within [from, to).
	// Zero bounds mean unbounded on that side.
	ListAppointments(ctx context.Context, userID string, from, to time.Time) ([]Appointment, error)

	UpdateAppointment(ctx context.Context, userID string, id uuid.UUID, params AppointmentParams) (*Appointment, error)
	CancelAppointment(ctx context.Context, userID string, id uuid.UUID) error
	DeleteAppointment(ctx context.Context, userID string, id uuid.UUID) error
}

// AppointmentParams contains the writable appointment fields.
type AppointmentParams struct {
	ClientID *uuid.UUID
	Title    string
	Location string
	StartsAt time.Time
	EndsAt   time.Time
	Notes    string
}
