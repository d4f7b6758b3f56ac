package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/email"
)

const (
	defaultLockTTL        = 10 * time.Minute
	defaultMaxConcurrency = 8
)

// Reconciler runs the overdue invoice pass.
type Reconciler struct {
	store  Store
	sender ReminderSender
	logger *slog.Logger

	holder         string
	lockTTL        time.Duration
	maxConcurrency int

	// now is swappable in tests
	now func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLockTTL overrides the run lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Reconciler) { r.lockTTL = ttl }
}

// WithMaxConcurrency bounds the per-invoice fan-out.
func WithMaxConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.maxConcurrency = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// NewReconciler creates a Reconciler. sender may be nil when no email
// provider is configured; Run reports a config error in that case.
func NewReconciler(store Store, sender ReminderSender, logger *slog.Logger, holder string, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:          store,
		sender:         sender,
		logger:         logger,
		holder:         holder,
		lockTTL:        defaultLockTTL,
		maxConcurrency: defaultMaxConcurrency,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one reconciliation pass.
//
// Missing email configuration fails before any query. A held lock returns
// ErrAlreadyRunning with no side effects. Query and commit errors abort the
// whole run. A failure on one invoice's reminder never stops the others,
// and never blocks the status update.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	const op = "reconcile.Run"

	if r.sender == nil {
		return nil, &domain.Error{
			Code:    domain.ECONFIG,
			Op:      op,
			Message: "No email provider is configured; cannot send overdue reminders.",
		}
	}

	acquired, err := r.store.AcquireRunLock(ctx, LockName, r.holder, r.lockTTL)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to acquire run lock")
	}
	if !acquired {
		return nil, ErrAlreadyRunning
	}
	defer func() {
		if err := r.store.ReleaseRunLock(context.WithoutCancel(ctx), LockName, r.holder); err != nil {
			r.logger.Error("failed to release run lock", "lock", LockName, "error", err)
		}
	}()

	now := r.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	invoices, err := r.store.EligibleInvoices(ctx, today)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to query overdue invoices")
	}
	if len(invoices) == 0 {
		return &Summary{Message: "No overdue invoices found."}, nil
	}

	r.logger.Info("starting overdue invoice run", "candidates", len(invoices), "as_of", today.Format("2006-01-02"))

	var emailsSent atomic.Int64
	p := pool.New().WithMaxGoroutines(r.maxConcurrency)
	for _, inv := range invoices {
		inv := inv
		p.Go(func() {
			if err := r.notify(ctx, inv); err != nil {
				r.logger.Warn("skipping overdue reminder",
					"invoice_id", inv.ID,
					"invoice_number", inv.InvoiceNumber,
					"error", err)
				return
			}
			emailsSent.Add(1)
		})
	}
	p.Wait()

	ids := make([]uuid.UUID, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
	}
	marked, err := r.store.MarkOverdue(ctx, ids)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to mark invoices overdue")
	}

	sent := int(emailsSent.Load())
	summary := &Summary{
		OverdueCount: int(marked),
		EmailsSent:   sent,
		Message:      fmt.Sprintf("Marked %d invoice(s) as overdue and sent %d reminder email(s).", marked, sent),
	}
	r.logger.Info("overdue invoice run complete", "overdue", summary.OverdueCount, "emails_sent", summary.EmailsSent)
	return summary, nil
}

// errSkip reports why a reminder was not sent. It is informational: the
// invoice still gets marked overdue.
type errSkip string

func (e errSkip) Error() string { return string(e) }

// notify sends one overdue reminder, gated on the owner's preference and a
// usable recipient address. Returns nil only when an email actually went out.
func (r *Reconciler) notify(ctx context.Context, inv domain.Invoice) error {
	ownerID, err := r.store.InvoiceOwner(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}

	var (
		profile    *domain.Profile
		client     *domain.Client
		perr, cerr error
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		profile, perr = r.store.Profile(ctx, ownerID)
	})
	wg.Go(func() {
		client, cerr = r.store.Client(ctx, ownerID, inv.ClientID)
	})
	wg.Wait()
	if perr != nil {
		return fmt.Errorf("fetch profile: %w", perr)
	}
	if cerr != nil {
		return fmt.Errorf("fetch client: %w", cerr)
	}

	if !profile.SendOverdueReminders {
		return errSkip("reminders disabled for owner")
	}
	recipient := client.InvoiceEmail()
	if recipient == "" {
		return errSkip("client has no email address")
	}

	data := email.OverdueReminderEmail{
		ClientName:    client.DisplayName(),
		InvoiceNumber: inv.InvoiceNumber,
		Total:         domain.FormatTotal(inv.TotalCents),
		Currency:      inv.Currency,
		DueDate:       inv.DueDate,
		SenderName:    profile.DisplayName,
	}
	if err := r.sender.SendOverdueReminder(ctx, recipient, data); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}
