package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/reconcile"
)

// ReconcileStore backs the overdue invoice run. Unlike the per-entity stores
// it queries across users, so nothing here filters on user_id except where a
// specific owner is named.
type ReconcileStore struct {
	db DB
}

// NewReconcileStore creates a new ReconcileStore instance.
func NewReconcileStore(db DB) *ReconcileStore {
	return &ReconcileStore{db: db}
}

var _ reconcile.Store = (*ReconcileStore)(nil)

// EligibleInvoices returns every sent invoice, across all users, whose due
// date is strictly before the given day. Line items are not loaded; the run
// only needs the header fields.
func (s *ReconcileStore) EligibleInvoices(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE status = $1 AND due_date < $2
		ORDER BY due_date, invoice_number`,
		domain.InvoiceStatusSent, before)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "reconcile.eligible", "database query failed")
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, "reconcile.eligible", "failed to scan invoice")
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "reconcile.eligible", "database query failed")
	}
	return invoices, nil
}

// InvoiceOwner resolves the user that owns an invoice.
func (s *ReconcileStore) InvoiceOwner(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	var userID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM invoices WHERE id = $1`, invoiceID).Scan(&userID)
	if err != nil {
		return "", notFound(err, domain.ErrInvoiceNotFound, "reconcile.owner")
	}
	return userID, nil
}

// Profile fetches a user's profile for reminder gating and sender identity.
func (s *ReconcileStore) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	return NewProfileService(s.db).GetProfile(ctx, userID)
}

// Client fetches one of a user's clients for recipient resolution.
func (s *ReconcileStore) Client(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error) {
	return NewClientService(s.db).GetClient(ctx, userID, clientID)
}

// MarkOverdue flips the given invoices from sent to overdue in a single
// transaction. Invoices that changed status since the candidate query are
// left alone; the returned count reflects rows actually updated.
func (s *ReconcileStore) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE invoices
		SET status = $1, updated_at = now()
		WHERE id = ANY($2) AND status = $3`,
		domain.InvoiceStatusOverdue, ids, domain.InvoiceStatusSent)
	if err != nil {
		return 0, domain.WrapError(err, domain.EINTERNAL, "reconcile.mark_overdue", "failed to update invoices")
	}
	return tag.RowsAffected(), nil
}

// AcquireRunLock takes the named lock. An expired lock from a crashed run is
// stolen; a live lock held by someone else returns false.
func (s *ReconcileStore) AcquireRunLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO run_locks (name, holder, acquired_at, expires_at)
		VALUES ($1, $2, now(), now() + make_interval(secs => $3))
		ON CONFLICT (name) DO UPDATE
		SET holder = EXCLUDED.holder, acquired_at = now(), expires_at = now() + make_interval(secs => $3)
		WHERE run_locks.expires_at < now()`,
		name, holder, ttl.Seconds())
	if err != nil {
		return false, domain.WrapError(err, domain.EINTERNAL, "reconcile.lock", "failed to acquire run lock")
	}
	return tag.RowsAffected() > 0, nil
}

// ReleaseRunLock drops the named lock if holder still owns it.
func (s *ReconcileStore) ReleaseRunLock(ctx context.Context, name, holder string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM run_locks WHERE name = $1 AND holder = $2`, name, holder)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "reconcile.unlock", "failed to release run lock")
	}
	return nil
}
