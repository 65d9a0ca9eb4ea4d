package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/platform/auth"
	"github.com/changedesk/api/internal/platform/httpx"
	"github.com/changedesk/api/internal/services"
)

// ClientHandlers exposes client management to account owners.
type ClientHandlers struct {
	clients services.ClientService
}

// NewClientHandlers constructs the client handlers.
func NewClientHandlers(clients services.ClientService) *ClientHandlers {
	return &ClientHandlers{clients: clients}
}

// Routes wires the /clients endpoints onto the provided router.
func (h *ClientHandlers) Routes(r chi.Router) {
	r.Get("/clients", h.list)
	r.Post("/clients", h.create)
}

type createClientRequest struct {
	Name string `json:"name"`
}

type clientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func buildClientResponse(c domain.Client) clientResponse {
	return clientResponse{
		ID:        string(c.ID),
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

func (h *ClientHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "authentication required", http.StatusUnauthorized))
		return
	}

	var req createClientRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	client, err := h.clients.Create(ctx, services.CreateClientCommand{Actor: actor, Name: req.Name})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, buildClientResponse(client))
}

func (h *ClientHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.ActorFrom(ctx)
	if !ok || actor.UserID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "authentication required", http.StatusUnauthorized))
		return
	}

	clients, err := h.clients.List(ctx, actor.UserID)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	payload := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		payload = append(payload, buildClientResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"clients": payload})
}
