// Package domain provides core business types and context helpers for Praxis.
//
// Context helpers centralize request-scoped identity access so that ownership
// scoping follows one pattern throughout the codebase.
package domain

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// userContextKey stores the authenticated user in context.
	userContextKey contextKey = iota
)

// User represents the authenticated identity stored in context.
// The ID is the subject claim of the externally-minted token; the full
// profile record lives in the database.
type User struct {
	ID    string
	Email string
}

// NewContextWithUser returns a context carrying the authenticated user.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil if none is set.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey).(*User)
	return user
}

// UserIDFromContext returns the authenticated user's ID, or "" if none is set.
func UserIDFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}
