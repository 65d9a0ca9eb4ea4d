// Package httpx renders the canonical JSON envelopes for responses and
// errors, including the mapping from domain and payment error codes to HTTP
// status classes.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/payments"
	"github.com/changedesk/api/internal/repositories"
)

// Error represents the canonical JSON error envelope returned by the API.
type Error struct {
	Code      string
	Message   string
	Status    int
	RequestID string
}

// NewError constructs a new Error with the provided parameters.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// WriteError writes the structured error as JSON to the provided response writer.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	requestID := err.RequestID
	if requestID == "" {
		requestID = sanitize(middleware.GetReqID(ctx), 80)
	}

	payload := map[string]any{
		"error":   err.Code,
		"message": err.Message,
		"status":  status,
	}
	if requestID != "" {
		payload["request_id"] = requestID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteJSON writes a success payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteDomainError maps err onto the stable external status classes:
// validation 400, not found 404, forbidden 403, conflict and invariant 409.
// Repository sentinels map the same way. Anything unrecognised is a 500
// with no internal detail leaked.
func WriteDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case domain.CodeOf(err) == domain.CodeValidation:
		WriteError(ctx, w, NewError("validation_error", domainMessage(err), http.StatusBadRequest))
	case domain.CodeOf(err) == domain.CodeNotFound, errors.Is(err, repositories.ErrNotFound):
		WriteError(ctx, w, NewError("not_found", "resource not found", http.StatusNotFound))
	case domain.CodeOf(err) == domain.CodeForbidden:
		WriteError(ctx, w, NewError("forbidden", domainMessage(err), http.StatusForbidden))
	case domain.CodeOf(err) == domain.CodeConflict, errors.Is(err, repositories.ErrConflict):
		WriteError(ctx, w, NewError("conflict", domainMessage(err), http.StatusConflict))
	case domain.CodeOf(err) == domain.CodeInvariant:
		// Internal contract breach: surface conflict semantics only.
		WriteError(ctx, w, NewError("conflict", "request cannot be applied in the current state", http.StatusConflict))
	case payments.CodeOf(err) == payments.CodeSignatureInvalid:
		WriteError(ctx, w, NewError("signature_invalid", "webhook signature verification failed", http.StatusBadRequest))
	case payments.CodeOf(err) != "":
		WriteError(ctx, w, NewError("payment_provider_error", "payment provider request failed", http.StatusInternalServerError))
	default:
		WriteError(ctx, w, NewError("internal_error", "internal server error", http.StatusInternalServerError))
	}
}

func domainMessage(err error) string {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr.Message
	}
	return err.Error()
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
