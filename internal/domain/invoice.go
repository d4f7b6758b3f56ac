package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Invoice status lifecycle. The reconciler only ever moves sent -> overdue;
// paid is reached by manual reconciliation, never by the batch job.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusPaid    = "paid"
)

// Invoice-related domain errors.
var (
	ErrInvoiceNotFound        = &Error{Code: ENOTFOUND, Message: "Invoice not found"}
	ErrInvoiceNotDraft        = &Error{Code: EINVALID, Message: "Invoice must be in draft status"}
	ErrInvoiceAlreadyPaid     = &Error{Code: ECONFLICT, Message: "Invoice already paid"}
	ErrInvoiceHasNoItems      = &Error{Code: EINVALID, Message: "Invoice must have at least one line item"}
	ErrDuplicateInvoiceNumber = &Error{Code: ECONFLICT, Message: "Invoice number already exists"}
)

// Invoice belongs to exactly one user and one client.
type Invoice struct {
	ID            uuid.UUID     `json:"id"`
	UserID        string        `json:"user_id"`
	ClientID      uuid.UUID     `json:"client_id"`
	InvoiceNumber string        `json:"invoice_number"`
	Status        string        `json:"status"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       time.Time     `json:"due_date"`
	Currency      string        `json:"currency"`
	TotalCents    int64         `json:"total_cents"`
	Items         []InvoiceItem `json:"items,omitempty"`
	Payment       PaymentMeta   `json:"payment"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// InvoiceItem is a single line on an invoice.
type InvoiceItem struct {
	ID          uuid.UUID `json:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
	Description string    `json:"description"`
	Quantity    int32     `json:"quantity"`
	UnitCents   int64     `json:"unit_cents"`
	TotalCents  int64     `json:"total_cents"`
}

// PaymentMeta records how an invoice gets (or got) paid.
type PaymentMeta struct {
	Provider   string     `json:"provider,omitempty"`    // "stripe", "manual", or ""
	PaymentURL string     `json:"payment_url,omitempty"` // hosted payment link, when a provider issued one
	Reference  string     `json:"reference,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

// FormatTotal renders a cent amount with two decimal places, e.g. "1240.50".
func FormatTotal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// InvoiceService manages a user's invoices and their lifecycle.
type InvoiceService interface {
	// CreateInvoice creates a draft invoice with its line items.
	CreateInvoice(ctx context.Context, userID string, params CreateInvoiceParams) (*Invoice, error)

	// GetInvoice retrieves an invoice with its items.
	GetInvoice(ctx context.Context, userID string, invoiceID uuid.UUID) (*Invoice, error)

	// ListInvoices lists a user's invoices, optionally filtered by status.
	ListInvoices(ctx context.Context, userID string, status string) ([]Invoice, error)

	// SendInvoice transitions a draft invoice to sent, attaches a payment
	// link when a billing provider is configured, and emails the client.
	SendInvoice(ctx context.Context, userID string, invoiceID uuid.UUID) (*Invoice, error)

	// RecordPayment marks an invoice paid (manual reconciliation).
	RecordPayment(ctx context.Context, userID string, invoiceID uuid.UUID, params RecordPaymentParams) (*Invoice, error)

	// DeleteDraft deletes an invoice that has never been sent.
	DeleteDraft(ctx context.Context, userID string, invoiceID uuid.UUID) error
}

// CreateInvoiceParams contains parameters for creating an invoice.
type CreateInvoiceParams struct {
	ClientID      uuid.UUID
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string
	Notes         string
	Items         []InvoiceItemParams
}

// InvoiceItemParams describes one line item on a new invoice.
type InvoiceItemParams struct {
	Description string
	Quantity    int32
	UnitCents   int64
}

// RecordPaymentParams contains parameters for recording a manual payment.
type RecordPaymentParams struct {
	Reference string
	PaidAt    time.Time
}
