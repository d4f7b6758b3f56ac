package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// InvoiceStore provides invoice persistence for the invoice service.
type InvoiceStore struct {
	db DB
}

// NewInvoiceStore creates a new InvoiceStore instance.
func NewInvoiceStore(db DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

const invoiceColumns = `id, user_id, client_id, invoice_number, status, issue_date, due_date,
	currency, total_cents, payment_provider, payment_url, payment_reference, paid_at, notes,
	created_at, updated_at`

func scanInvoice(row interface{ Scan(...any) error }) (*domain.Invoice, error) {
	var inv domain.Invoice
	var paidAt *time.Time
	err := row.Scan(&inv.ID, &inv.UserID, &inv.ClientID, &inv.InvoiceNumber, &inv.Status,
		&inv.IssueDate, &inv.DueDate, &inv.Currency, &inv.TotalCents,
		&inv.Payment.Provider, &inv.Payment.PaymentURL, &inv.Payment.Reference, &paidAt,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Payment.PaidAt = paidAt
	return &inv, nil
}

// CreateInvoice inserts an invoice and its line items in one transaction.
// The invoice's ID, timestamps, and computed total are filled in on return.
func (s *InvoiceStore) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "invoice.create", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO invoices (user_id, client_id, invoice_number, status, issue_date, due_date, currency, total_cents, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+invoiceColumns,
		inv.UserID, inv.ClientID, inv.InvoiceNumber, inv.Status, inv.IssueDate, inv.DueDate,
		inv.Currency, inv.TotalCents, inv.Notes)

	created, err := scanInvoice(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return domain.WrapError(err, domain.EINTERNAL, "invoice.create", "failed to create invoice")
	}

	items := make([]domain.InvoiceItem, len(inv.Items))
	for i, item := range inv.Items {
		err := tx.QueryRow(ctx, `
			INSERT INTO invoice_items (invoice_id, description, quantity, unit_cents, total_cents)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			created.ID, item.Description, item.Quantity, item.UnitCents, item.TotalCents,
		).Scan(&item.ID)
		if err != nil {
			return domain.WrapError(err, domain.EINTERNAL, "invoice.create", "failed to create invoice item")
		}
		item.InvoiceID = created.ID
		items[i] = item
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "invoice.create", "failed to commit invoice")
	}

	created.Items = items
	*inv = *created
	return nil
}

// GetInvoice retrieves an invoice with its items.
func (s *InvoiceStore) GetInvoice(ctx context.Context, userID string, invoiceID uuid.UUID) (*domain.Invoice, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE id = $1 AND user_id = $2`,
		invoiceID, userID)

	inv, err := scanInvoice(row)
	if err != nil {
		return nil, notFound(err, domain.ErrInvoiceNotFound, "invoice.get")
	}

	items, err := s.invoiceItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (s *InvoiceStore) invoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_cents, total_cents
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id`,
		invoiceID)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "invoice.items", "failed to load invoice items")
	}
	defer rows.Close()

	var items []domain.InvoiceItem
	for rows.Next() {
		var item domain.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.UnitCents, &item.TotalCents); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, "invoice.items", "failed to scan invoice item")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListInvoices lists a user's invoices, newest issue date first.
// Empty status lists all statuses. Items are not loaded for lists.
func (s *InvoiceStore) ListInvoices(ctx context.Context, userID string, status string) ([]domain.Invoice, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY issue_date DESC, invoice_number DESC`,
		userID, status)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "invoice.list", "failed to list invoices")
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, "invoice.list", "failed to scan invoice")
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// TransitionStatus moves an invoice from one status to another. The guard on
// the current status makes lifecycle transitions race-safe: a concurrent
// transition loses and surfaces as not-found.
func (s *InvoiceStore) TransitionStatus(ctx context.Context, userID string, invoiceID uuid.UUID, from, to string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE invoices SET status = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = $3`,
		invoiceID, userID, from, to)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "invoice.transition", "failed to update invoice status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// SetPaymentLink records the hosted payment link a billing provider issued.
func (s *InvoiceStore) SetPaymentLink(ctx context.Context, invoiceID uuid.UUID, provider, url string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE invoices SET payment_provider = $2, payment_url = $3, updated_at = now()
		WHERE id = $1`,
		invoiceID, provider, url)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "invoice.payment_link", "failed to save payment link")
	}
	return nil
}

// MarkPaid records a manual payment against a sent or overdue invoice.
func (s *InvoiceStore) MarkPaid(ctx context.Context, userID string, invoiceID uuid.UUID, reference string, paidAt time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE invoices SET
			status = 'paid', payment_reference = $3, paid_at = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status IN ('sent', 'overdue')`,
		invoiceID, userID, reference, paidAt)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "invoice.mark_paid", "failed to record payment")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// DeleteDraft deletes a draft invoice and its items.
func (s *InvoiceStore) DeleteDraft(ctx context.Context, userID string, invoiceID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM invoices
		WHERE id = $1 AND user_id = $2 AND status = 'draft'`,
		invoiceID, userID)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "invoice.delete", "failed to delete invoice")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
