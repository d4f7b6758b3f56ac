package email

import "time"

// EmailTemplate defines the interface for email templates
type EmailTemplate interface {
	Subject() string
	TemplateName() string
}

// OverdueReminderEmail is the payload for an overdue-invoice reminder.
type OverdueReminderEmail struct {
	ClientName    string
	InvoiceNumber string
	Total         string // already formatted to two decimal places
	Currency      string
	DueDate       time.Time
	SenderName    string // the freelancer's display name
}

func (e OverdueReminderEmail) Subject() string {
	return "Payment Reminder - Invoice " + e.InvoiceNumber
}

func (e OverdueReminderEmail) TemplateName() string {
	return "overdue_reminder"
}

// InvoiceSentEmail is the payload sent to a client when an invoice goes out.
type InvoiceSentEmail struct {
	ClientName    string
	InvoiceNumber string
	Total         string
	Currency      string
	IssueDate     time.Time
	DueDate       time.Time
	SenderName    string
	PaymentURL    string // optional hosted payment link
}

func (e InvoiceSentEmail) Subject() string {
	return "Invoice " + e.InvoiceNumber + " from " + e.SenderName
}

func (e InvoiceSentEmail) TemplateName() string {
	return "invoice_sent"
}
