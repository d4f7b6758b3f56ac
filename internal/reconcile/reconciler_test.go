package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/email"
)

type mockStore struct {
	EligibleInvoicesFunc func(ctx context.Context, before time.Time) ([]domain.Invoice, error)
	InvoiceOwnerFunc     func(ctx context.Context, invoiceID uuid.UUID) (string, error)
	ProfileFunc          func(ctx context.Context, userID string) (*domain.Profile, error)
	ClientFunc           func(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error)
	MarkOverdueFunc      func(ctx context.Context, ids []uuid.UUID) (int64, error)
	AcquireRunLockFunc   func(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)
	ReleaseRunLockFunc   func(ctx context.Context, name, holder string) error
}

func (m *mockStore) EligibleInvoices(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
	return m.EligibleInvoicesFunc(ctx, before)
}

func (m *mockStore) InvoiceOwner(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	return m.InvoiceOwnerFunc(ctx, invoiceID)
}

func (m *mockStore) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	return m.ProfileFunc(ctx, userID)
}

func (m *mockStore) Client(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error) {
	return m.ClientFunc(ctx, userID, clientID)
}

func (m *mockStore) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return m.MarkOverdueFunc(ctx, ids)
}

func (m *mockStore) AcquireRunLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	if m.AcquireRunLockFunc != nil {
		return m.AcquireRunLockFunc(ctx, name, holder, ttl)
	}
	return true, nil
}

func (m *mockStore) ReleaseRunLock(ctx context.Context, name, holder string) error {
	if m.ReleaseRunLockFunc != nil {
		return m.ReleaseRunLockFunc(ctx, name, holder)
	}
	return nil
}

type mockSender struct {
	mu   sync.Mutex
	sent []sentReminder

	SendFunc func(ctx context.Context, to string, data email.OverdueReminderEmail) error
}

type sentReminder struct {
	to   string
	data email.OverdueReminderEmail
}

func (m *mockSender) SendOverdueReminder(ctx context.Context, to string, data email.OverdueReminderEmail) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, to, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentReminder{to: to, data: data})
	return nil
}

func (m *mockSender) reminders() []sentReminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentReminder, len(m.sent))
	copy(out, m.sent)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testInvoice(number string, clientID uuid.UUID, totalCents int64) domain.Invoice {
	return domain.Invoice{
		ID:            uuid.New(),
		UserID:        "user-1",
		ClientID:      clientID,
		InvoiceNumber: number,
		Status:        domain.InvoiceStatusSent,
		DueDate:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Currency:      "usd",
		TotalCents:    totalCents,
	}
}

// fixture wires a store where every invoice belongs to user-1, who has
// reminders enabled, and every client has a primary email.
func fixture(invoices []domain.Invoice, clients map[uuid.UUID]*domain.Client) *mockStore {
	return &mockStore{
		EligibleInvoicesFunc: func(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
			return invoices, nil
		},
		InvoiceOwnerFunc: func(ctx context.Context, invoiceID uuid.UUID) (string, error) {
			return "user-1", nil
		},
		ProfileFunc: func(ctx context.Context, userID string) (*domain.Profile, error) {
			return &domain.Profile{
				UserID:               userID,
				DisplayName:          "Dana Freelance",
				Email:                "dana@example.com",
				SendOverdueReminders: true,
			}, nil
		},
		ClientFunc: func(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error) {
			c, ok := clients[clientID]
			if !ok {
				return nil, domain.ErrClientNotFound
			}
			return c, nil
		},
		MarkOverdueFunc: func(ctx context.Context, ids []uuid.UUID) (int64, error) {
			return int64(len(ids)), nil
		},
	}
}

func TestRun_NoCandidates(t *testing.T) {
	var marked bool
	store := fixture(nil, nil)
	store.MarkOverdueFunc = func(ctx context.Context, ids []uuid.UUID) (int64, error) {
		marked = true
		return 0, nil
	}
	sender := &mockSender{}

	r := NewReconciler(store, sender, testLogger(), "test-host")
	summary, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "No overdue invoices found.", summary.Message)
	assert.Zero(t, summary.OverdueCount)
	assert.Zero(t, summary.EmailsSent)
	assert.False(t, marked, "empty run must not write")
	assert.Empty(t, sender.reminders(), "empty run must not email")
}

func TestRun_MarksAllCandidatesAndSendsReminders(t *testing.T) {
	clientID := uuid.New()
	invoices := []domain.Invoice{
		testInvoice("INV-001", clientID, 125050),
		testInvoice("INV-002", clientID, 9900),
	}
	clients := map[uuid.UUID]*domain.Client{
		clientID: {ID: clientID, CompanyName: "Acme Co", Email: "ap@acme.test"},
	}
	store := fixture(invoices, clients)

	var markedIDs []uuid.UUID
	store.MarkOverdueFunc = func(ctx context.Context, ids []uuid.UUID) (int64, error) {
		markedIDs = ids
		return int64(len(ids)), nil
	}
	sender := &mockSender{}

	r := NewReconciler(store, sender, testLogger(), "test-host")
	summary, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.OverdueCount)
	assert.Equal(t, 2, summary.EmailsSent)
	assert.Len(t, markedIDs, 2)

	sent := sender.reminders()
	require.Len(t, sent, 2)
	totals := map[string]string{}
	for _, s := range sent {
		assert.Equal(t, "ap@acme.test", s.to)
		assert.Equal(t, "Acme Co", s.data.ClientName)
		assert.Equal(t, "Dana Freelance", s.data.SenderName)
		totals[s.data.InvoiceNumber] = s.data.Total
	}
	assert.Equal(t, "1250.50", totals["INV-001"], "total formatted to two decimals")
	assert.Equal(t, "99.00", totals["INV-002"])
}

func TestRun_SummaryCountsSendableSubset(t *testing.T) {
	reachable, unreachable := uuid.New(), uuid.New()
	invoices := []domain.Invoice{
		testInvoice("INV-001", reachable, 100),
		testInvoice("INV-002", reachable, 200),
		testInvoice("INV-003", unreachable, 300),
	}
	store := fixture(invoices, map[uuid.UUID]*domain.Client{
		reachable:   {ID: reachable, Email: "ap@acme.test"},
		unreachable: {ID: unreachable},
	})
	sender := &mockSender{}

	summary, err := NewReconciler(store, sender, testLogger(), "test-host").Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.OverdueCount)
	assert.Equal(t, 2, summary.EmailsSent)
	assert.Equal(t, "Marked 3 invoice(s) as overdue and sent 2 reminder email(s).", summary.Message)
	assert.Len(t, sender.reminders(), 2)
}

func TestRun_ReminderGating(t *testing.T) {
	t.Run("owner opted out", func(t *testing.T) {
		clientID := uuid.New()
		store := fixture(
			[]domain.Invoice{testInvoice("INV-001", clientID, 100)},
			map[uuid.UUID]*domain.Client{clientID: {ID: clientID, Email: "ap@acme.test"}},
		)
		store.ProfileFunc = func(ctx context.Context, userID string) (*domain.Profile, error) {
			return &domain.Profile{UserID: userID, SendOverdueReminders: false}, nil
		}
		sender := &mockSender{}

		summary, err := NewReconciler(store, sender, testLogger(), "test-host").Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, summary.OverdueCount, "status update happens regardless of opt-out")
		assert.Zero(t, summary.EmailsSent)
		assert.Empty(t, sender.reminders())
	})

	t.Run("client has no address", func(t *testing.T) {
		clientID := uuid.New()
		store := fixture(
			[]domain.Invoice{testInvoice("INV-001", clientID, 100)},
			map[uuid.UUID]*domain.Client{clientID: {ID: clientID}},
		)
		sender := &mockSender{}

		summary, err := NewReconciler(store, sender, testLogger(), "test-host").Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, summary.OverdueCount)
		assert.Zero(t, summary.EmailsSent)
	})
}

func TestRun_BillingEmailPrecedence(t *testing.T) {
	clientID := uuid.New()
	store := fixture(
		[]domain.Invoice{testInvoice("INV-001", clientID, 100)},
		map[uuid.UUID]*domain.Client{clientID: {
			ID:           clientID,
			Email:        "contact@acme.test",
			BillingEmail: "billing@acme.test",
		}},
	)
	sender := &mockSender{}

	_, err := NewReconciler(store, sender, testLogger(), "test-host").Run(context.Background())

	require.NoError(t, err)
	sent := sender.reminders()
	require.Len(t, sent, 1)
	assert.Equal(t, "billing@acme.test", sent[0].to)
}

func TestRun_CommitFailureAbortsRun(t *testing.T) {
	clientID := uuid.New()
	store := fixture(
		[]domain.Invoice{testInvoice("INV-001", clientID, 100)},
		map[uuid.UUID]*domain.Client{clientID: {ID: clientID, Email: "ap@acme.test"}},
	)
	store.MarkOverdueFunc = func(ctx context.Context, ids []uuid.UUID) (int64, error) {
		return 0, errors.New("deadlock detected")
	}

	summary, err := NewReconciler(store, &mockSender{}, testLogger(), "test-host").Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, summary, "a failed commit yields no partial summary")
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	assert.ErrorContains(t, err, "failed to mark invoices overdue")
	assert.ErrorContains(t, err, "deadlock detected")
}

func TestRun_PerInvoiceFailureIsIsolated(t *testing.T) {
	clientA, clientB := uuid.New(), uuid.New()
	invoices := []domain.Invoice{
		testInvoice("INV-BAD", clientA, 100),
		testInvoice("INV-OK", clientB, 200),
	}
	store := fixture(invoices, map[uuid.UUID]*domain.Client{
		clientA: {ID: clientA, Email: "a@acme.test"},
		clientB: {ID: clientB, Email: "b@acme.test"},
	})
	sender := &mockSender{
		SendFunc: func(ctx context.Context, to string, data email.OverdueReminderEmail) error {
			if data.InvoiceNumber == "INV-BAD" {
				return errors.New("provider rejected message")
			}
			return nil
		},
	}

	summary, err := NewReconciler(store, sender, testLogger(), "test-host").Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.OverdueCount, "both invoices still marked overdue")
	assert.Equal(t, 1, summary.EmailsSent)
	sent := sender.reminders()
	require.Len(t, sent, 1)
	assert.Equal(t, "INV-OK", sent[0].data.InvoiceNumber)
}

func TestRun_UnresolvableOwnerKeepsStatusUpdate(t *testing.T) {
	clientID := uuid.New()
	store := fixture(
		[]domain.Invoice{testInvoice("INV-001", clientID, 100)},
		map[uuid.UUID]*domain.Client{clientID: {ID: clientID, Email: "ap@acme.test"}},
	)
	store.InvoiceOwnerFunc = func(ctx context.Context, invoiceID uuid.UUID) (string, error) {
		return "", domain.ErrInvoiceNotFound
	}
	sender := &mockSender{}

	summary, err := NewReconciler(store, sender, testLogger(), "test-host").Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.OverdueCount)
	assert.Zero(t, summary.EmailsSent)
}

func TestRun_IdempotentAcrossRuns(t *testing.T) {
	clientID := uuid.New()
	pending := []domain.Invoice{testInvoice("INV-001", clientID, 100)}
	clients := map[uuid.UUID]*domain.Client{clientID: {ID: clientID, Email: "ap@acme.test"}}

	store := fixture(pending, clients)
	store.EligibleInvoicesFunc = func(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
		out := pending
		pending = nil // first run consumes the batch, as marking overdue does
		return out, nil
	}
	sender := &mockSender{}
	r := NewReconciler(store, sender, testLogger(), "test-host")

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.OverdueCount)

	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.OverdueCount)
	assert.Equal(t, "No overdue invoices found.", second.Message)
	assert.Len(t, sender.reminders(), 1, "no duplicate reminder on re-run")
}

func TestRun_LockContention(t *testing.T) {
	store := fixture(nil, nil)
	var queried bool
	store.EligibleInvoicesFunc = func(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
		queried = true
		return nil, nil
	}
	store.AcquireRunLockFunc = func(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
		assert.Equal(t, LockName, name)
		return false, nil
	}

	summary, err := NewReconciler(store, &mockSender{}, testLogger(), "test-host").Run(context.Background())

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.False(t, queried, "busy run must not touch storage")
}

func TestRun_MissingSenderFailsBeforeQuery(t *testing.T) {
	store := fixture(nil, nil)
	var queried, locked bool
	store.EligibleInvoicesFunc = func(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
		queried = true
		return nil, nil
	}
	store.AcquireRunLockFunc = func(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
		locked = true
		return true, nil
	}

	summary, err := NewReconciler(store, nil, testLogger(), "test-host").Run(context.Background())

	assert.Nil(t, summary)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFIG, domain.ErrorCode(err))
	assert.False(t, queried)
	assert.False(t, locked)
}

func TestRun_QueryFailureAbortsRun(t *testing.T) {
	store := fixture(nil, nil)
	store.EligibleInvoicesFunc = func(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
		return nil, errors.New("connection refused")
	}

	summary, err := NewReconciler(store, &mockSender{}, testLogger(), "test-host").Run(context.Background())

	assert.Nil(t, summary)
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	assert.ErrorContains(t, err, "failed to query overdue invoices")
	assert.ErrorContains(t, err, "connection refused")
}

func TestRun_LockAcquireFailureAbortsRun(t *testing.T) {
	store := fixture(nil, nil)
	var queried bool
	store.EligibleInvoicesFunc = func(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
		queried = true
		return nil, nil
	}
	store.AcquireRunLockFunc = func(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
		return false, errors.New("connection refused")
	}

	summary, err := NewReconciler(store, &mockSender{}, testLogger(), "test-host").Run(context.Background())

	assert.Nil(t, summary)
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	assert.ErrorContains(t, err, "failed to acquire run lock")
	assert.False(t, queried)
}

func TestRun_UsesUTCDayBoundary(t *testing.T) {
	var gotBefore time.Time
	store := fixture(nil, nil)
	store.EligibleInvoicesFunc = func(ctx context.Context, before time.Time) ([]domain.Invoice, error) {
		gotBefore = before
		return nil, nil
	}

	fixed := time.Date(2026, 3, 15, 23, 45, 12, 0, time.FixedZone("PST", -8*3600))
	r := NewReconciler(store, &mockSender{}, testLogger(), "test-host", WithClock(func() time.Time { return fixed }))
	_, err := r.Run(context.Background())

	require.NoError(t, err)
	// 23:45 PST on the 15th is already the 16th in UTC
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), gotBefore)
}
