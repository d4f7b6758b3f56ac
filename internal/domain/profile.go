package domain

import (
	"context"
	"time"
)

// Profile-related domain errors.
var (
	ErrProfileNotFound = &Error{Code: ENOTFOUND, Message: "Profile not found"}
)

// Profile holds per-user settings: the display identity used as the email
// "from" name and the overdue-reminder opt-in.
type Profile struct {
	UserID               string    `json:"user_id"`
	DisplayName          string    `json:"display_name"`
	BusinessName         string    `json:"business_name,omitempty"`
	Email                string    `json:"email"`
	SendOverdueReminders bool      `json:"send_overdue_reminders"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ProfileService manages user profiles.
type ProfileService interface {
	// GetProfile retrieves the profile for a user.
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// UpsertProfile creates or updates the profile for a user.
	UpsertProfile(ctx context.Context, userID string, params UpsertProfileParams) (*Profile, error)
}

// UpsertProfileParams contains the writable profile fields.
type UpsertProfileParams struct {
	DisplayName          string
	BusinessName         string
	Email                string
	SendOverdueReminders bool
}
