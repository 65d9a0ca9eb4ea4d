package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/platform/httpx"
	"github.com/changedesk/api/internal/services"
)

// PublicHandlers serves the client-facing ticket page. Possession of the
// unguessable public id is the only credential in this zone.
type PublicHandlers struct {
	tickets  services.TicketService
	payments services.PaymentService
}

// NewPublicHandlers constructs the public handlers.
func NewPublicHandlers(tickets services.TicketService, payments services.PaymentService) *PublicHandlers {
	return &PublicHandlers{tickets: tickets, payments: payments}
}

// Routes wires the public endpoints onto the provided router.
func (h *PublicHandlers) Routes(r chi.Router) {
	r.Get("/tickets/{publicId}", h.getTicket)
	r.Post("/tickets/{publicId}/checkout", h.startCheckout)
}

// publicTicketResponse is the reduced view shared with the client: no
// internal id, no owner, no client reference.
type publicTicketResponse struct {
	PublicID   string  `json:"publicId"`
	Message    string  `json:"message"`
	PriceCents int64   `json:"priceCents"`
	Status     string  `json:"status"`
	AssetURL   *string `json:"assetUrl,omitempty"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (h *PublicHandlers) getTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	publicID := chi.URLParam(r, "publicId")
	if publicID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "publicId is required", http.StatusBadRequest))
		return
	}

	ticket, err := h.tickets.GetPublic(ctx, domain.TicketPublicID(publicID))
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, publicTicketResponse{
		PublicID:   string(ticket.PublicID),
		Message:    ticket.Message,
		PriceCents: int64(ticket.PriceCents),
		Status:     string(ticket.Status),
		AssetURL:   ticket.AssetURL,
	})
}

func (h *PublicHandlers) startCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	publicID := chi.URLParam(r, "publicId")
	if publicID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "publicId is required", http.StatusBadRequest))
		return
	}

	redirect, err := h.payments.StartPublicCheckout(ctx, domain.TicketPublicID(publicID))
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, checkoutResponse{URL: redirect.URL})
}
