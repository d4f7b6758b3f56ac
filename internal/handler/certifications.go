package handler

import (
	"net/http"
	"time"

	"github.com/dorianvale/praxis/internal/domain"
)

// CertificationsHandler serves professional certification tracking.
type CertificationsHandler struct {
	certifications domain.CertificationService
}

// NewCertificationsHandler creates a new certifications handler.
func NewCertificationsHandler(certifications domain.CertificationService) *CertificationsHandler {
	return &CertificationsHandler{certifications: certifications}
}

type certificationRequest struct {
	Name          string `json:"name"`
	Issuer        string `json:"issuer"`
	IssuedOn      string `json:"issued_on"`  // YYYY-MM-DD
	ExpiresOn     string `json:"expires_on"` // YYYY-MM-DD, optional
	CredentialURL string `json:"credential_url"`
}

// Create handles POST /api/certifications
func (h *CertificationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req certificationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Name == "" {
		respondError(w, r, domain.Errorf(domain.EINVALID, "handler.certifications", "Name is required"))
		return
	}

	issuedOn, err := parseDate(req.IssuedOn, "issued_on")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var expiresOn *time.Time
	if req.ExpiresOn != "" {
		t, err := parseDate(req.ExpiresOn, "expires_on")
		if err != nil {
			respondError(w, r, err)
			return
		}
		expiresOn = &t
	}

	cert, err := h.certifications.CreateCertification(r.Context(), userID, domain.CertificationParams{
		Name:          req.Name,
		Issuer:        req.Issuer,
		IssuedOn:      issuedOn,
		ExpiresOn:     expiresOn,
		CredentialURL: req.CredentialURL,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, cert)
}

// List handles GET /api/certifications
func (h *CertificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	certs, err := h.certifications.ListCertifications(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"certifications": certs})
}

// Delete handles DELETE /api/certifications/{id}
func (h *CertificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.certifications.DeleteCertification(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Certification deleted."})
}
