package billing

// Provider defines the interface for payment processing.
// Implementations can use Stripe, Square, etc.

import (
	"context"
	"errors"
)

var (
	// ErrInvalidAPIKey is returned when the provider API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrPaymentLinkFailed is returned when the provider rejects the payment link request.
	ErrPaymentLinkFailed = errors.New("billing: payment link creation failed")
)

// Provider creates hosted payment pages for invoices. The returned link is
// stored on the invoice and included in the email sent to the client.
type Provider interface {
	// CreatePaymentLink creates a hosted payment page for a single invoice.
	CreatePaymentLink(ctx context.Context, params CreatePaymentLinkParams) (*PaymentLink, error)
}

// CreatePaymentLinkParams describes the invoice being collected.
type CreatePaymentLinkParams struct {
	InvoiceID     string // local invoice ID, attached as provider metadata
	InvoiceNumber string // shown on the hosted page
	Description   string
	AmountCents   int64
	Currency      string // ISO 4217, lowercase (e.g. "usd")
	CustomerEmail string // prefills the payment form when set
	SuccessURL    string
}

// PaymentLink is the provider's hosted page for an invoice.
type PaymentLink struct {
	Provider  string // "stripe", "mock"
	Reference string // provider-side ID (checkout session ID for Stripe)
	URL       string
}
