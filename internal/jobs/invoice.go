package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReconcileOverduePayload is empty: the run scans every user's invoices.
type ReconcileOverduePayload struct{}

// InvoiceSentEmailPayload carries everything needed to email a client that an
// invoice went out, so the worker never re-reads the invoice.
type InvoiceSentEmailPayload struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	To            string    `json:"to"`
	ClientName    string    `json:"client_name"`
	InvoiceNumber string    `json:"invoice_number"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	IssueDate     time.Time `json:"issue_date"`
	DueDate       time.Time `json:"due_date"`
	SenderName    string    `json:"sender_name"`
	PaymentURL    string    `json:"payment_url,omitempty"`
}

// EnqueueReconcileOverdue schedules an overdue invoice run.
// Typically called nightly by the worker's scheduler loop.
func EnqueueReconcileOverdue(ctx context.Context, q Queue, scheduledAt time.Time) error {
	payload, err := json.Marshal(ReconcileOverduePayload{})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	_, err = q.Enqueue(ctx, EnqueueParams{
		JobType:     JobTypeReconcileOverdue,
		Payload:     payload,
		Priority:    50, // off-peak work
		ScheduledAt: scheduledAt,
	})
	return err
}

// EnqueueInvoiceSentEmail schedules the invoice-sent notification email.
func EnqueueInvoiceSentEmail(ctx context.Context, q Queue, payload InvoiceSentEmailPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	_, err = q.Enqueue(ctx, EnqueueParams{
		JobType: JobTypeInvoiceSentEmail,
		Payload: data,
	})
	return err
}
