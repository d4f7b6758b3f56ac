// Package handler implements the JSON API. Handlers stay thin: decode,
// validate, call the domain service, encode.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/middleware"
	"github.com/dorianvale/praxis/internal/telemetry"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError maps a domain error onto the API error envelope. Internal
// errors are logged with their cause but reported generically.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := errorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	if status >= 500 {
		logger.Error("request failed", "error", err, "code", code)
		telemetry.CaptureError(err, map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
		})
	} else {
		logger.Info("request rejected", "error", err, "code", code)
	}

	respondJSON(w, status, map[string]string{"error": message})
}

func errorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ECONFIG, domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Errorf(domain.EINVALID, "handler.decode", "Invalid request body: %v", err)
	}
	return nil
}

// pathUUID parses the named path segment as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Errorf(domain.EINVALID, "handler.path", "Invalid %s", name)
	}
	return id, nil
}

// requireUser returns the authenticated user ID or an unauthorized error.
// The auth middleware normally guarantees presence; this is the backstop for
// routes registered outside the authenticated group by mistake.
func requireUser(r *http.Request) (string, error) {
	userID := domain.UserIDFromContext(r.Context())
	if userID == "" {
		return "", domain.Errorf(domain.EUNAUTHORIZED, "handler.auth", "Authentication required")
	}
	return userID, nil
}
