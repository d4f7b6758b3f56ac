// Package service holds the domain service implementations that orchestrate
// across storage, billing, email, and the job queue.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/billing"
	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/jobs"
	"github.com/dorianvale/praxis/internal/postgres"
)

// InvoiceStore is the persistence surface the invoice service needs.
// *postgres.InvoiceStore satisfies this.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *domain.Invoice) error
	GetInvoice(ctx context.Context, userID string, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, userID string, status string) ([]domain.Invoice, error)
	TransitionStatus(ctx context.Context, userID string, invoiceID uuid.UUID, from, to string) error
	SetPaymentLink(ctx context.Context, invoiceID uuid.UUID, provider, url string) error
	MarkPaid(ctx context.Context, userID string, invoiceID uuid.UUID, reference string, paidAt time.Time) error
	DeleteDraft(ctx context.Context, userID string, invoiceID uuid.UUID) error
}

var _ InvoiceStore = (*postgres.InvoiceStore)(nil)

// InvoiceService implements domain.InvoiceService. Billing and the job queue
// are optional: without a billing provider invoices send without a payment
// link, and without a queue the invoice-sent email is skipped.
type InvoiceService struct {
	store    InvoiceStore
	profiles domain.ProfileService
	clients  domain.ClientService
	billing  billing.Provider
	queue    jobs.Queue
	baseURL  string
	logger   *slog.Logger
}

var _ domain.InvoiceService = (*InvoiceService)(nil)

// NewInvoiceService creates the invoice service.
func NewInvoiceService(
	store InvoiceStore,
	profiles domain.ProfileService,
	clients domain.ClientService,
	billingProvider billing.Provider,
	queue jobs.Queue,
	baseURL string,
	logger *slog.Logger,
) *InvoiceService {
	return &InvoiceService{
		store:    store,
		profiles: profiles,
		clients:  clients,
		billing:  billingProvider,
		queue:    queue,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// CreateInvoice creates a draft invoice after validating the client and line
// items. Totals are computed here, never trusted from the caller.
func (s *InvoiceService) CreateInvoice(ctx context.Context, userID string, params domain.CreateInvoiceParams) (*domain.Invoice, error) {
	const op = "service.invoice.create"

	if params.InvoiceNumber == "" {
		return nil, domain.Errorf(domain.EINVALID, op, "invoice number is required")
	}
	if len(params.Items) == 0 {
		return nil, domain.ErrInvoiceHasNoItems
	}
	if params.DueDate.Before(params.IssueDate) {
		return nil, domain.Errorf(domain.EINVALID, op, "due date cannot precede issue date")
	}

	client, err := s.clients.GetClient(ctx, userID, params.ClientID)
	if err != nil {
		return nil, err
	}
	if client.Archived {
		return nil, domain.ErrClientArchived
	}

	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}

	var total int64
	items := make([]domain.InvoiceItem, len(params.Items))
	for i, item := range params.Items {
		if item.Description == "" {
			return nil, domain.Errorf(domain.EINVALID, op, "item %d: description is required", i+1)
		}
		if item.Quantity <= 0 {
			return nil, domain.Errorf(domain.EINVALID, op, "item %d: quantity must be positive", i+1)
		}
		if item.UnitCents < 0 {
			return nil, domain.Errorf(domain.EINVALID, op, "item %d: unit price cannot be negative", i+1)
		}
		lineTotal := int64(item.Quantity) * item.UnitCents
		items[i] = domain.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitCents:   item.UnitCents,
			TotalCents:  lineTotal,
		}
		total += lineTotal
	}

	inv := &domain.Invoice{
		UserID:        userID,
		ClientID:      params.ClientID,
		InvoiceNumber: params.InvoiceNumber,
		Status:        domain.InvoiceStatusDraft,
		IssueDate:     params.IssueDate,
		DueDate:       params.DueDate,
		Currency:      currency,
		TotalCents:    total,
		Items:         items,
		Notes:         params.Notes,
	}
	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvoice retrieves an invoice with its items.
func (s *InvoiceService) GetInvoice(ctx context.Context, userID string, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return s.store.GetInvoice(ctx, userID, invoiceID)
}

// ListInvoices lists a user's invoices, optionally filtered by status.
func (s *InvoiceService) ListInvoices(ctx context.Context, userID string, status string) ([]domain.Invoice, error) {
	return s.store.ListInvoices(ctx, userID, status)
}

// SendInvoice transitions a draft to sent. When a billing provider is
// configured a hosted payment link is attached first; when the client has a
// usable address the notification email goes through the job queue. Neither
// side effect can fail the send itself once the transition commits.
func (s *InvoiceService) SendInvoice(ctx context.Context, userID string, invoiceID uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return nil, domain.ErrInvoiceNotDraft
	}

	client, err := s.clients.GetClient(ctx, userID, inv.ClientID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.billing != nil {
		link, err := s.billing.CreatePaymentLink(ctx, billing.CreatePaymentLinkParams{
			InvoiceID:     inv.ID.String(),
			InvoiceNumber: inv.InvoiceNumber,
			Description:   fmt.Sprintf("Invoice %s from %s", inv.InvoiceNumber, profile.DisplayName),
			AmountCents:   inv.TotalCents,
			Currency:      inv.Currency,
			CustomerEmail: client.InvoiceEmail(),
			SuccessURL:    s.baseURL,
		})
		if err != nil {
			// A missing link is an inconvenience, not a failed send.
			s.logger.Warn("payment link creation failed", "invoice_id", inv.ID, "error", err)
		} else if err := s.store.SetPaymentLink(ctx, inv.ID, link.Provider, link.URL); err != nil {
			s.logger.Warn("failed to save payment link", "invoice_id", inv.ID, "error", err)
		} else {
			inv.Payment.Provider = link.Provider
			inv.Payment.PaymentURL = link.URL
		}
	}

	if err := s.store.TransitionStatus(ctx, userID, inv.ID, domain.InvoiceStatusDraft, domain.InvoiceStatusSent); err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatusSent

	recipient := client.InvoiceEmail()
	if s.queue != nil && recipient != "" {
		err := jobs.EnqueueInvoiceSentEmail(ctx, s.queue, jobs.InvoiceSentEmailPayload{
			InvoiceID:     inv.ID,
			To:            recipient,
			ClientName:    client.DisplayName(),
			InvoiceNumber: inv.InvoiceNumber,
			Total:         domain.FormatTotal(inv.TotalCents),
			Currency:      inv.Currency,
			IssueDate:     inv.IssueDate,
			DueDate:       inv.DueDate,
			SenderName:    profile.DisplayName,
			PaymentURL:    inv.Payment.PaymentURL,
		})
		if err != nil {
			s.logger.Warn("failed to enqueue invoice email", "invoice_id", inv.ID, "error", err)
		}
	}

	return inv, nil
}

// RecordPayment marks a sent or overdue invoice as paid.
func (s *InvoiceService) RecordPayment(ctx context.Context, userID string, invoiceID uuid.UUID, params domain.RecordPaymentParams) (*domain.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusPaid {
		return nil, domain.ErrInvoiceAlreadyPaid
	}
	if inv.Status == domain.InvoiceStatusDraft {
		return nil, domain.Errorf(domain.EINVALID, "service.invoice.record_payment", "cannot record payment on a draft invoice")
	}

	paidAt := params.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	if err := s.store.MarkPaid(ctx, userID, invoiceID, params.Reference, paidAt); err != nil {
		return nil, err
	}
	return s.store.GetInvoice(ctx, userID, invoiceID)
}

// DeleteDraft deletes an invoice that has never been sent.
func (s *InvoiceService) DeleteDraft(ctx context.Context, userID string, invoiceID uuid.UUID) error {
	err := s.store.DeleteDraft(ctx, userID, invoiceID)
	if errors.Is(err, domain.ErrInvoiceNotFound) {
		// Distinguish a missing invoice from one past draft.
		if inv, getErr := s.store.GetInvoice(ctx, userID, invoiceID); getErr == nil && inv.Status != domain.InvoiceStatusDraft {
			return domain.ErrInvoiceNotDraft
		}
	}
	return err
}
