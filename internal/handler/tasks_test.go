package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/email"
	"github.com/dorianvale/praxis/internal/reconcile"
)

// stubStore is a minimal reconcile.Store for exercising the HTTP contract.
type stubStore struct {
	invoices   []domain.Invoice
	lockHeld   bool
	markedRows int64
}

func (s *stubStore) EligibleInvoices(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
	return s.invoices, nil
}

func (s *stubStore) InvoiceOwner(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	return "user-1", nil
}

func (s *stubStore) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	return &domain.Profile{UserID: userID, DisplayName: "Dana", SendOverdueReminders: true}, nil
}

func (s *stubStore) Client(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error) {
	return &domain.Client{ID: clientID, CompanyName: "Acme Co", Email: "ap@acme.test"}, nil
}

func (s *stubStore) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	s.markedRows = int64(len(ids))
	return s.markedRows, nil
}

func (s *stubStore) AcquireRunLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	return !s.lockHeld, nil
}

func (s *stubStore) ReleaseRunLock(ctx context.Context, name, holder string) error {
	return nil
}

type stubSender struct{ sent int }

func (s *stubSender) SendOverdueReminder(ctx context.Context, to string, data email.OverdueReminderEmail) error {
	s.sent++
	return nil
}

func newTestReconciler(store reconcile.Store, sender reconcile.ReminderSender) *reconcile.Reconciler {
	return reconcile.NewReconciler(store, sender, slog.New(slog.DiscardHandler), "test-host")
}

func TestReconcileOverdueEndpoint(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		h := NewTasksHandler(newTestReconciler(&stubStore{}, &stubSender{}))

		rec := httptest.NewRecorder()
		h.ReconcileOverdue(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/reconcile-overdue", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "No overdue invoices found.", body["message"])
	})

	t.Run("reports summary counts", func(t *testing.T) {
		store := &stubStore{invoices: []domain.Invoice{
			{ID: uuid.New(), ClientID: uuid.New(), InvoiceNumber: "INV-1", Status: domain.InvoiceStatusSent, TotalCents: 100},
		}}
		h := NewTasksHandler(newTestReconciler(store, &stubSender{}))

		rec := httptest.NewRecorder()
		h.ReconcileOverdue(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/reconcile-overdue", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var summary reconcile.Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, 1, summary.OverdueCount)
		assert.Equal(t, 1, summary.EmailsSent)
		assert.NotEmpty(t, summary.Message)
	})

	t.Run("busy run returns conflict", func(t *testing.T) {
		h := NewTasksHandler(newTestReconciler(&stubStore{lockHeld: true}, &stubSender{}))

		rec := httptest.NewRecorder()
		h.ReconcileOverdue(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/reconcile-overdue", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["message"], "already in progress")
	})

	t.Run("missing email config returns error envelope", func(t *testing.T) {
		h := NewTasksHandler(newTestReconciler(&stubStore{}, nil))

		rec := httptest.NewRecorder()
		h.ReconcileOverdue(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/reconcile-overdue", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
	})
}
