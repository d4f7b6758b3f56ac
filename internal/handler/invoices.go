package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
)

// InvoicesHandler serves the invoice lifecycle.
type InvoicesHandler struct {
	invoices domain.InvoiceService
}

// NewInvoicesHandler creates a new invoices handler.
func NewInvoicesHandler(invoices domain.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{invoices: invoices}
}

type invoiceItemRequest struct {
	Description string `json:"description"`
	Quantity    int32  `json:"quantity"`
	UnitCents   int64  `json:"unit_cents"`
}

type createInvoiceRequest struct {
	ClientID      uuid.UUID            `json:"client_id"`
	InvoiceNumber string               `json:"invoice_number"`
	IssueDate     string               `json:"issue_date"` // YYYY-MM-DD
	DueDate       string               `json:"due_date"`   // YYYY-MM-DD
	Currency      string               `json:"currency"`
	Notes         string               `json:"notes"`
	Items         []invoiceItemRequest `json:"items"`
}

// Create handles POST /api/invoices
func (h *InvoicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req createInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	issueDate, err := parseDate(req.IssueDate, "issue_date")
	if err != nil {
		respondError(w, r, err)
		return
	}
	dueDate, err := parseDate(req.DueDate, "due_date")
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]domain.InvoiceItemParams, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.InvoiceItemParams{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitCents:   item.UnitCents,
		}
	}

	inv, err := h.invoices.CreateInvoice(r.Context(), userID, domain.CreateInvoiceParams{
		ClientID:      req.ClientID,
		InvoiceNumber: req.InvoiceNumber,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Currency:      req.Currency,
		Notes:         req.Notes,
		Items:         items,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

// List handles GET /api/invoices?status=sent
func (h *InvoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusOverdue, domain.InvoiceStatusPaid:
	default:
		respondError(w, r, domain.Errorf(domain.EINVALID, "handler.invoices", "Unknown invoice status %q", status))
		return
	}

	invoices, err := h.invoices.ListInvoices(r.Context(), userID, status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

// Get handles GET /api/invoices/{id}
func (h *InvoicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	invoiceID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	inv, err := h.invoices.GetInvoice(r.Context(), userID, invoiceID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// Send handles POST /api/invoices/{id}/send
func (h *InvoicesHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	invoiceID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	inv, err := h.invoices.SendInvoice(r.Context(), userID, invoiceID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

type recordPaymentRequest struct {
	Reference string `json:"reference"`
	PaidAt    string `json:"paid_at"` // YYYY-MM-DD, optional
}

// RecordPayment handles POST /api/invoices/{id}/payments
func (h *InvoicesHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	invoiceID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req recordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var paidAt time.Time
	if req.PaidAt != "" {
		paidAt, err = parseDate(req.PaidAt, "paid_at")
		if err != nil {
			respondError(w, r, err)
			return
		}
	}

	inv, err := h.invoices.RecordPayment(r.Context(), userID, invoiceID, domain.RecordPaymentParams{
		Reference: req.Reference,
		PaidAt:    paidAt,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// Delete handles DELETE /api/invoices/{id}
func (h *InvoicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	invoiceID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.invoices.DeleteDraft(r.Context(), userID, invoiceID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Invoice deleted."})
}

// parseDate parses an ISO date (no time component) in UTC.
func parseDate(value, field string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, domain.Errorf(domain.EINVALID, "handler.date", "Invalid %s, expected YYYY-MM-DD", field)
	}
	return t, nil
}
