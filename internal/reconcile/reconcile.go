// Package reconcile implements the overdue invoice run: find sent invoices
// past their due date, mark them overdue in one transaction, and send payment
// reminders to the affected clients.
package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/email"
)

// LockName identifies the run lock shared by every invocation path
// (HTTP trigger, worker job, one-shot binary).
const LockName = "overdue-invoice-run"

// ErrAlreadyRunning is returned when another run holds the lock. It carries
// no side effects: the caller should report busy, not failure.
var ErrAlreadyRunning = &domain.Error{
	Code:    domain.ECONFLICT,
	Op:      "reconcile.Run",
	Message: "An overdue invoice run is already in progress.",
}

// Store is the storage surface the run needs. It deliberately spans users:
// the run is a system task, not a per-user operation.
type Store interface {
	// EligibleInvoices returns all invoices, across every user, with
	// status "sent" and a due date strictly before the given day.
	EligibleInvoices(ctx context.Context, before time.Time) ([]domain.Invoice, error)

	// InvoiceOwner resolves the user that owns an invoice.
	InvoiceOwner(ctx context.Context, invoiceID uuid.UUID) (string, error)

	// Profile fetches a user's profile.
	Profile(ctx context.Context, userID string) (*domain.Profile, error)

	// Client fetches one of a user's clients.
	Client(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error)

	// MarkOverdue transitions the given invoices from "sent" to "overdue"
	// in a single transaction and reports how many rows changed.
	MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error)

	// AcquireRunLock takes the named lock for holder, with an expiry so a
	// crashed run cannot wedge the system. Returns false when already held.
	AcquireRunLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)

	// ReleaseRunLock drops the named lock if holder still owns it.
	ReleaseRunLock(ctx context.Context, name, holder string) error
}

// ReminderSender sends the overdue payment reminder. *email.Service
// satisfies this.
type ReminderSender interface {
	SendOverdueReminder(ctx context.Context, to string, data email.OverdueReminderEmail) error
}

var _ ReminderSender = (*email.Service)(nil)

// Summary reports the outcome of one run.
type Summary struct {
	OverdueCount int    `json:"overdueCount"`
	EmailsSent   int    `json:"emailsSent"`
	Message      string `json:"message"`
}
