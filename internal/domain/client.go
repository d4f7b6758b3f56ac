package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Client-related domain errors.
var (
	ErrClientNotFound = &Error{Code: ENOTFOUND, Message: "Client not found"}
	ErrClientArchived = &Error{Code: ECONFLICT, Message: "Client is archived"}
)

// Client is a customer of the freelancer. A client may carry a dedicated
// billing address alongside its primary contact address; billing email takes
// precedence for invoice and receipt correspondence.
type Client struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	CompanyName  string    `json:"company_name"`
	ContactName  string    `json:"contact_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	BillingEmail string    `json:"billing_email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InvoiceEmail returns the address invoice correspondence should go to:
// the billing email when present, the primary email otherwise. Returns ""
// when the client has no usable address.
func (c *Client) InvoiceEmail() string {
	if c.BillingEmail != "" {
		return c.BillingEmail
	}
	return c.Email
}

// DisplayName returns the name used when addressing the client.
func (c *Client) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return c.ContactName
}

// ClientService manages a user's clients.
type ClientService interface {
	CreateClient(ctx context.Context, userID string, params ClientParams) (*Client, error)
	GetClient(ctx context.Context, userID string, clientID uuid.UUID) (*Client, error)
	ListClients(ctx context.Context, userID string, includeArchived bool) ([]Client, error)
	UpdateClient(ctx context.Context, userID string, clientID uuid.UUID, params ClientParams) (*Client, error)

	// ArchiveClient soft-deletes a client. Invoices referencing it survive.
	ArchiveClient(ctx context.Context, userID string, clientID uuid.UUID) error
}

// ClientParams contains the writable client fields.
type ClientParams struct {
	CompanyName  string
	ContactName  string
	Email        string
	BillingEmail string
	Phone        string
	Notes        string
}
