package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/changedesk/api/internal/platform/httpx"
	"github.com/changedesk/api/internal/services"
)

// Stripe caps event payloads well under this; anything larger is not a
// webhook we sent for.
const maxWebhookBodySize = 1 << 20

// WebhookHandlers receives payment provider deliveries. The response code is
// a protocol signal: 2xx stops redelivery, anything else asks the provider
// to retry.
type WebhookHandlers struct {
	payments services.PaymentService
}

// NewWebhookHandlers constructs the webhook handlers.
func NewWebhookHandlers(payments services.PaymentService) *WebhookHandlers {
	return &WebhookHandlers{payments: payments}
}

// Routes wires the provider endpoints onto the provided router.
func (h *WebhookHandlers) Routes(r chi.Router) {
	r.Post("/stripe", h.stripe)
}

func (h *WebhookHandlers) stripe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "Stripe-Signature header is required", http.StatusBadRequest))
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unreadable request body", http.StatusBadRequest))
		return
	}
	if len(payload) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "empty request body", http.StatusBadRequest))
		return
	}

	if err := h.payments.HandleWebhook(ctx, payload, signature); err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
