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

// PairingHandlers exposes the device pairing handshake. Start and revoke
// live in the authenticated web zone; complete is deliberately
// unauthenticated because the device holds nothing but the code.
type PairingHandlers struct {
	pairing services.PairingService
}

// NewPairingHandlers constructs the pairing handlers.
func NewPairingHandlers(pairing services.PairingService) *PairingHandlers {
	return &PairingHandlers{pairing: pairing}
}

// WebRoutes wires the owner-side endpoints onto the authenticated web router.
func (h *PairingHandlers) WebRoutes(r chi.Router) {
	r.Post("/pairing/start", h.start)
	r.Post("/devices/{deviceId}/revoke", h.revoke)
}

// ExtRoutes wires the device-side endpoint onto the ext router.
func (h *PairingHandlers) ExtRoutes(r chi.Router) {
	r.Post("/pairing/complete", h.complete)
}

type startPairingResponse struct {
	PairingCode string    `json:"pairingCode"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type completePairingRequest struct {
	PairingCode string `json:"pairingCode"`
	Label       string `json:"label,omitempty"`
}

type completePairingResponse struct {
	DeviceToken string `json:"deviceToken"`
	DeviceID    string `json:"deviceId"`
}

func (h *PairingHandlers) start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.ActorFrom(ctx)
	if !ok || actor.Kind != domain.ActorKindUser {
		httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "authentication required", http.StatusUnauthorized))
		return
	}

	res, err := h.pairing.Start(ctx, actor.UserID)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, startPairingResponse{
		PairingCode: res.PairingCode,
		ExpiresAt:   res.ExpiresAt,
	})
}

func (h *PairingHandlers) complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req completePairingRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	res, err := h.pairing.Complete(ctx, services.CompletePairingCommand{
		PairingCode: req.PairingCode,
		Label:       req.Label,
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, completePairingResponse{
		DeviceToken: res.DeviceToken,
		DeviceID:    string(res.DeviceID),
	})
}

func (h *PairingHandlers) revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "authentication required", http.StatusUnauthorized))
		return
	}

	id := chi.URLParam(r, "deviceId")
	if id == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "deviceId is required", http.StatusBadRequest))
		return
	}

	if err := h.pairing.Revoke(ctx, actor, domain.DeviceID(id)); err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
