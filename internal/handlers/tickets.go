package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/platform/auth"
	"github.com/changedesk/api/internal/platform/httpx"
	"github.com/changedesk/api/internal/repositories"
	"github.com/changedesk/api/internal/services"
)

const maxBodySize = 16 * 1024

// TicketHandlers exposes the ticket lifecycle to authenticated actors. The
// same routes serve the web and device trust zones; the actor in context
// decides who is acting.
type TicketHandlers struct {
	tickets services.TicketService
}

// NewTicketHandlers constructs the ticket handlers.
func NewTicketHandlers(tickets services.TicketService) *TicketHandlers {
	return &TicketHandlers{tickets: tickets}
}

// Routes wires the /tickets endpoints onto the provided router.
func (h *TicketHandlers) Routes(r chi.Router) {
	r.Get("/tickets", h.dashboard)
	r.Post("/tickets", h.create)
	r.Post("/tickets/{ticketId}/approve", h.approve)
	r.Post("/tickets/{ticketId}/reject", h.reject)
}

type createTicketRequest struct {
	ClientID   string  `json:"clientId"`
	Message    string  `json:"message"`
	PriceCents int64   `json:"priceCents"`
	AssetURL   *string `json:"assetUrl,omitempty"`
}

type ticketResponse struct {
	ID         string    `json:"id"`
	PublicID   string    `json:"publicId"`
	ClientID   string    `json:"clientId"`
	Message    string    `json:"message"`
	PriceCents int64     `json:"priceCents"`
	Status     string    `json:"status"`
	AssetURL   *string   `json:"assetUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func buildTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:         string(t.ID),
		PublicID:   string(t.PublicID),
		ClientID:   string(t.ClientID),
		Message:    t.Message,
		PriceCents: int64(t.PriceCents),
		Status:     string(t.Status),
		AssetURL:   t.AssetURL,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

type dashboardTicketResponse struct {
	ID         string    `json:"id"`
	PublicID   string    `json:"publicId"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	PriceCents int64     `json:"priceCents"`
	AssetURL   *string   `json:"assetUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
}

func (h *TicketHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "authentication required", http.StatusUnauthorized))
		return
	}

	var req createTicketRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	ticket, err := h.tickets.Create(ctx, services.CreateTicketCommand{
		Actor:      actor,
		ClientID:   domain.ClientID(req.ClientID),
		Message:    req.Message,
		PriceCents: req.PriceCents,
		AssetURL:   req.AssetURL,
	})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, buildTicketResponse(ticket))
}

func (h *TicketHandlers) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.ActorFrom(ctx)
	if !ok || actor.UserID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "authentication required", http.StatusUnauthorized))
		return
	}

	rows, err := h.tickets.Dashboard(ctx, actor.UserID)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	payload := make([]dashboardTicketResponse, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, buildDashboardResponse(row))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tickets": payload})
}

func buildDashboardResponse(row repositories.DashboardTicket) dashboardTicketResponse {
	return dashboardTicketResponse{
		ID:         string(row.ID),
		PublicID:   string(row.PublicID),
		Status:     string(row.Status),
		Message:    row.Message,
		PriceCents: int64(row.PriceCents),
		AssetURL:   row.AssetURL,
		CreatedAt:  row.CreatedAt,
		ClientID:   string(row.ClientID),
		ClientName: row.ClientName,
	}
}

func (h *TicketHandlers) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tickets.Approve)
}

func (h *TicketHandlers) reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tickets.Reject)
}

func (h *TicketHandlers) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error),
) {
	ctx := r.Context()
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "authentication required", http.StatusUnauthorized))
		return
	}

	id := chi.URLParam(r, "ticketId")
	if id == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "ticketId is required", http.StatusBadRequest))
		return
	}

	ticket, err := apply(ctx, actor, domain.TicketID(id))
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildTicketResponse(ticket))
}

func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
