package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	sent     []*Email
	sendFunc func(ctx context.Context, email *Email) (string, error)
}

func (m *mockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.sent = append(m.sent, email)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, email)
	}
	return "msg_1", nil
}

func TestSendOverdueReminder(t *testing.T) {
	sender := &mockSender{}
	svc, err := NewService(sender, "noreply@praxis.local", "Praxis")
	require.NoError(t, err)

	data := OverdueReminderEmail{
		ClientName:    "Acme Corp",
		InvoiceNumber: "INV-2025-014",
		Total:         "1250.50",
		Currency:      "USD",
		DueDate:       time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		SenderName:    "Dana Freelance",
	}

	err = svc.SendOverdueReminder(context.Background(), "billing@acme.test", data)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"billing@acme.test"}, msg.To)
	assert.Equal(t, "Dana Freelance <noreply@praxis.local>", msg.From)
	assert.Equal(t, "Payment Reminder - Invoice INV-2025-014", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "INV-2025-014")
	assert.Contains(t, msg.HTMLBody, "USD 1250.50")
	assert.Contains(t, msg.HTMLBody, "August 15, 2025")
	assert.Contains(t, msg.TextBody, "1250.50")
	assert.NotContains(t, msg.TextBody, "<strong>")
}

func TestSendOverdueReminderDefaultFromName(t *testing.T) {
	sender := &mockSender{}
	svc, err := NewService(sender, "noreply@praxis.local", "Praxis")
	require.NoError(t, err)

	data := OverdueReminderEmail{
		ClientName:    "Acme Corp",
		InvoiceNumber: "INV-1",
		Total:         "99.00",
		Currency:      "USD",
		DueDate:       time.Now().UTC(),
	}

	err = svc.SendOverdueReminder(context.Background(), "billing@acme.test", data)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Praxis <noreply@praxis.local>", sender.sent[0].From)
}

func TestSendOverdueReminderSenderFailure(t *testing.T) {
	sender := &mockSender{
		sendFunc: func(ctx context.Context, email *Email) (string, error) {
			return "", errors.New("provider unavailable")
		},
	}
	svc, err := NewService(sender, "noreply@praxis.local", "Praxis")
	require.NoError(t, err)

	err = svc.SendOverdueReminder(context.Background(), "billing@acme.test", OverdueReminderEmail{
		InvoiceNumber: "INV-1",
		DueDate:       time.Now().UTC(),
	})
	assert.ErrorContains(t, err, "provider unavailable")
}

func TestSendInvoiceSent(t *testing.T) {
	sender := &mockSender{}
	svc, err := NewService(sender, "noreply@praxis.local", "Praxis")
	require.NoError(t, err)

	data := InvoiceSentEmail{
		ClientName:    "Acme Corp",
		InvoiceNumber: "INV-2025-015",
		Total:         "500.00",
		Currency:      "USD",
		IssueDate:     time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		SenderName:    "Dana Freelance",
		PaymentURL:    "https://checkout.stripe.test/pay/cs_123",
	}

	err = svc.SendInvoiceSent(context.Background(), "billing@acme.test", data)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "Invoice INV-2025-015 from Dana Freelance", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "https://checkout.stripe.test/pay/cs_123")
	assert.Contains(t, msg.HTMLBody, "September 30, 2025")
}

func TestGeneratePlainText(t *testing.T) {
	text := generatePlainText("<h2>Hello</h2><p>Line one<br>Line two &amp; three</p>")
	assert.Equal(t, "Hello\nLine one\nLine two & three", text)
}
