package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorianvale/praxis/internal/billing"
	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/jobs"
)

type mockInvoiceStore struct {
	CreateInvoiceFunc    func(ctx context.Context, inv *domain.Invoice) error
	GetInvoiceFunc       func(ctx context.Context, userID string, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListInvoicesFunc     func(ctx context.Context, userID string, status string) ([]domain.Invoice, error)
	TransitionStatusFunc func(ctx context.Context, userID string, invoiceID uuid.UUID, from, to string) error
	SetPaymentLinkFunc   func(ctx context.Context, invoiceID uuid.UUID, provider, url string) error
	MarkPaidFunc         func(ctx context.Context, userID string, invoiceID uuid.UUID, reference string, paidAt time.Time) error
	DeleteDraftFunc      func(ctx context.Context, userID string, invoiceID uuid.UUID) error
}

func (m *mockInvoiceStore) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	return m.CreateInvoiceFunc(ctx, inv)
}

func (m *mockInvoiceStore) GetInvoice(ctx context.Context, userID string, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return m.GetInvoiceFunc(ctx, userID, invoiceID)
}

func (m *mockInvoiceStore) ListInvoices(ctx context.Context, userID string, status string) ([]domain.Invoice, error) {
	return m.ListInvoicesFunc(ctx, userID, status)
}

func (m *mockInvoiceStore) TransitionStatus(ctx context.Context, userID string, invoiceID uuid.UUID, from, to string) error {
	return m.TransitionStatusFunc(ctx, userID, invoiceID, from, to)
}

func (m *mockInvoiceStore) SetPaymentLink(ctx context.Context, invoiceID uuid.UUID, provider, url string) error {
	if m.SetPaymentLinkFunc != nil {
		return m.SetPaymentLinkFunc(ctx, invoiceID, provider, url)
	}
	return nil
}

func (m *mockInvoiceStore) MarkPaid(ctx context.Context, userID string, invoiceID uuid.UUID, reference string, paidAt time.Time) error {
	return m.MarkPaidFunc(ctx, userID, invoiceID, reference, paidAt)
}

func (m *mockInvoiceStore) DeleteDraft(ctx context.Context, userID string, invoiceID uuid.UUID) error {
	return m.DeleteDraftFunc(ctx, userID, invoiceID)
}

type mockProfileService struct {
	GetProfileFunc func(ctx context.Context, userID string) (*domain.Profile, error)
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return m.GetProfileFunc(ctx, userID)
}

func (m *mockProfileService) UpsertProfile(ctx context.Context, userID string, params domain.UpsertProfileParams) (*domain.Profile, error) {
	panic("not used")
}

type mockClientService struct {
	GetClientFunc func(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error)
}

func (m *mockClientService) CreateClient(ctx context.Context, userID string, params domain.ClientParams) (*domain.Client, error) {
	panic("not used")
}

func (m *mockClientService) GetClient(ctx context.Context, userID string, clientID uuid.UUID) (*domain.Client, error) {
	return m.GetClientFunc(ctx, userID, clientID)
}

func (m *mockClientService) ListClients(ctx context.Context, userID string, includeArchived bool) ([]domain.Client, error) {
	panic("not used")
}

func (m *mockClientService) UpdateClient(ctx context.Context, userID string, clientID uuid.UUID, params domain.ClientParams) (*domain.Client, error) {
	panic("not used")
}

func (m *mockClientService) ArchiveClient(ctx context.Context, userID string, clientID uuid.UUID) error {
	panic("not used")
}

type mockQueue struct {
	enqueued []jobs.EnqueueParams

	EnqueueFunc func(ctx context.Context, params jobs.EnqueueParams) (uuid.UUID, error)
}

func (m *mockQueue) Enqueue(ctx context.Context, params jobs.EnqueueParams) (uuid.UUID, error) {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, params)
	}
	m.enqueued = append(m.enqueued, params)
	return uuid.New(), nil
}

func (m *mockQueue) Claim(ctx context.Context, queue, workerID string) (*jobs.Job, error) {
	panic("not used")
}

func (m *mockQueue) Complete(ctx context.Context, jobID uuid.UUID) error { panic("not used") }

func (m *mockQueue) Fail(ctx context.Context, jobID uuid.UUID, errMessage string) error {
	panic("not used")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func activeClient(id uuid.UUID) *domain.Client {
	return &domain.Client{ID: id, CompanyName: "Acme Co", Email: "ap@acme.test"}
}

func TestCreateInvoice(t *testing.T) {
	clientID := uuid.New()
	clients := &mockClientService{
		GetClientFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Client, error) {
			return activeClient(id), nil
		},
	}
	issue := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 0, 30)

	t.Run("computes totals from line items", func(t *testing.T) {
		var created *domain.Invoice
		store := &mockInvoiceStore{
			CreateInvoiceFunc: func(ctx context.Context, inv *domain.Invoice) error {
				inv.ID = uuid.New()
				created = inv
				return nil
			},
		}
		svc := NewInvoiceService(store, nil, clients, nil, nil, "", discardLogger())

		inv, err := svc.CreateInvoice(context.Background(), "user-1", domain.CreateInvoiceParams{
			ClientID:      clientID,
			InvoiceNumber: "INV-001",
			IssueDate:     issue,
			DueDate:       due,
			Items: []domain.InvoiceItemParams{
				{Description: "Design work", Quantity: 10, UnitCents: 15000},
				{Description: "Hosting", Quantity: 1, UnitCents: 2500},
			},
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
		assert.Equal(t, int64(152500), inv.TotalCents)
		assert.Equal(t, "usd", inv.Currency)
		assert.Equal(t, int64(150000), inv.Items[0].TotalCents)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		svc := NewInvoiceService(&mockInvoiceStore{}, nil, clients, nil, nil, "", discardLogger())
		_, err := svc.CreateInvoice(context.Background(), "user-1", domain.CreateInvoiceParams{
			ClientID:      clientID,
			InvoiceNumber: "INV-002",
			IssueDate:     issue,
			DueDate:       due,
		})
		assert.ErrorIs(t, err, domain.ErrInvoiceHasNoItems)
	})

	t.Run("rejects archived client", func(t *testing.T) {
		archived := &mockClientService{
			GetClientFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Client, error) {
				return &domain.Client{ID: id, Archived: true}, nil
			},
		}
		svc := NewInvoiceService(&mockInvoiceStore{}, nil, archived, nil, nil, "", discardLogger())
		_, err := svc.CreateInvoice(context.Background(), "user-1", domain.CreateInvoiceParams{
			ClientID:      clientID,
			InvoiceNumber: "INV-003",
			IssueDate:     issue,
			DueDate:       due,
			Items:         []domain.InvoiceItemParams{{Description: "Work", Quantity: 1, UnitCents: 100}},
		})
		assert.ErrorIs(t, err, domain.ErrClientArchived)
	})

	t.Run("rejects due date before issue date", func(t *testing.T) {
		svc := NewInvoiceService(&mockInvoiceStore{}, nil, clients, nil, nil, "", discardLogger())
		_, err := svc.CreateInvoice(context.Background(), "user-1", domain.CreateInvoiceParams{
			ClientID:      clientID,
			InvoiceNumber: "INV-004",
			IssueDate:     issue,
			DueDate:       issue.AddDate(0, 0, -1),
			Items:         []domain.InvoiceItemParams{{Description: "Work", Quantity: 1, UnitCents: 100}},
		})
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})
}

func TestSendInvoice(t *testing.T) {
	userID := "user-1"
	clientID := uuid.New()
	invoiceID := uuid.New()
	issue := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	draft := func() *domain.Invoice {
		return &domain.Invoice{
			ID:            invoiceID,
			UserID:        userID,
			ClientID:      clientID,
			InvoiceNumber: "INV-001",
			Status:        domain.InvoiceStatusDraft,
			IssueDate:     issue,
			DueDate:       issue.AddDate(0, 0, 14),
			Currency:      "usd",
			TotalCents:    50000,
		}
	}
	profiles := &mockProfileService{
		GetProfileFunc: func(ctx context.Context, id string) (*domain.Profile, error) {
			return &domain.Profile{UserID: id, DisplayName: "Dana Freelance"}, nil
		},
	}
	clients := &mockClientService{
		GetClientFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Client, error) {
			return activeClient(id), nil
		},
	}

	t.Run("attaches payment link and enqueues email", func(t *testing.T) {
		var transitioned bool
		store := &mockInvoiceStore{
			GetInvoiceFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
				return draft(), nil
			},
			TransitionStatusFunc: func(ctx context.Context, userID string, id uuid.UUID, from, to string) error {
				transitioned = true
				assert.Equal(t, domain.InvoiceStatusDraft, from)
				assert.Equal(t, domain.InvoiceStatusSent, to)
				return nil
			},
		}
		queue := &mockQueue{}
		svc := NewInvoiceService(store, profiles, clients, billing.NewMockProvider(), queue, "https://app.example.test", discardLogger())

		inv, err := svc.SendInvoice(context.Background(), userID, invoiceID)

		require.NoError(t, err)
		assert.True(t, transitioned)
		assert.Equal(t, domain.InvoiceStatusSent, inv.Status)
		assert.Equal(t, "mock", inv.Payment.Provider)
		assert.NotEmpty(t, inv.Payment.PaymentURL)

		require.Len(t, queue.enqueued, 1)
		assert.Equal(t, jobs.JobTypeInvoiceSentEmail, queue.enqueued[0].JobType)
		var payload jobs.InvoiceSentEmailPayload
		require.NoError(t, json.Unmarshal(queue.enqueued[0].Payload, &payload))
		assert.Equal(t, "ap@acme.test", payload.To)
		assert.Equal(t, "500.00", payload.Total)
		assert.Equal(t, inv.Payment.PaymentURL, payload.PaymentURL)
	})

	t.Run("payment link failure does not block send", func(t *testing.T) {
		store := &mockInvoiceStore{
			GetInvoiceFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
				return draft(), nil
			},
			TransitionStatusFunc: func(ctx context.Context, userID string, id uuid.UUID, from, to string) error {
				return nil
			},
		}
		provider := billing.NewMockProvider()
		provider.CreatePaymentLinkFunc = func(ctx context.Context, params billing.CreatePaymentLinkParams) (*billing.PaymentLink, error) {
			return nil, errors.New("provider down")
		}
		svc := NewInvoiceService(store, profiles, clients, provider, &mockQueue{}, "", discardLogger())

		inv, err := svc.SendInvoice(context.Background(), userID, invoiceID)

		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusSent, inv.Status)
		assert.Empty(t, inv.Payment.PaymentURL)
	})

	t.Run("rejects non-draft invoice", func(t *testing.T) {
		store := &mockInvoiceStore{
			GetInvoiceFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
				inv := draft()
				inv.Status = domain.InvoiceStatusSent
				return inv, nil
			},
		}
		svc := NewInvoiceService(store, profiles, clients, nil, nil, "", discardLogger())

		_, err := svc.SendInvoice(context.Background(), userID, invoiceID)
		assert.ErrorIs(t, err, domain.ErrInvoiceNotDraft)
	})
}

func TestRecordPayment(t *testing.T) {
	userID := "user-1"
	invoiceID := uuid.New()

	t.Run("marks a sent invoice paid", func(t *testing.T) {
		status := domain.InvoiceStatusSent
		store := &mockInvoiceStore{
			GetInvoiceFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
				return &domain.Invoice{ID: id, UserID: userID, Status: status}, nil
			},
			MarkPaidFunc: func(ctx context.Context, userID string, id uuid.UUID, reference string, paidAt time.Time) error {
				assert.Equal(t, "wire-123", reference)
				status = domain.InvoiceStatusPaid
				return nil
			},
		}
		svc := NewInvoiceService(store, nil, nil, nil, nil, "", discardLogger())

		inv, err := svc.RecordPayment(context.Background(), userID, invoiceID, domain.RecordPaymentParams{Reference: "wire-123"})

		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	})

	t.Run("rejects an already paid invoice", func(t *testing.T) {
		store := &mockInvoiceStore{
			GetInvoiceFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
				return &domain.Invoice{ID: id, Status: domain.InvoiceStatusPaid}, nil
			},
		}
		svc := NewInvoiceService(store, nil, nil, nil, nil, "", discardLogger())

		_, err := svc.RecordPayment(context.Background(), userID, invoiceID, domain.RecordPaymentParams{})
		assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)
	})
}

func TestDeleteDraft(t *testing.T) {
	userID := "user-1"
	invoiceID := uuid.New()

	t.Run("reports non-draft as invalid", func(t *testing.T) {
		store := &mockInvoiceStore{
			DeleteDraftFunc: func(ctx context.Context, userID string, id uuid.UUID) error {
				return domain.ErrInvoiceNotFound
			},
			GetInvoiceFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
				return &domain.Invoice{ID: id, Status: domain.InvoiceStatusSent}, nil
			},
		}
		svc := NewInvoiceService(store, nil, nil, nil, nil, "", discardLogger())

		err := svc.DeleteDraft(context.Background(), userID, invoiceID)
		assert.ErrorIs(t, err, domain.ErrInvoiceNotDraft)
	})

	t.Run("reports missing invoice as not found", func(t *testing.T) {
		store := &mockInvoiceStore{
			DeleteDraftFunc: func(ctx context.Context, userID string, id uuid.UUID) error {
				return domain.ErrInvoiceNotFound
			},
			GetInvoiceFunc: func(ctx context.Context, userID string, id uuid.UUID) (*domain.Invoice, error) {
				return nil, domain.ErrInvoiceNotFound
			},
		}
		svc := NewInvoiceService(store, nil, nil, nil, nil, "", discardLogger())

		err := svc.DeleteDraft(context.Background(), userID, invoiceID)
		assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
	})
}
