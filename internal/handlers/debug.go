package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/platform/auth"
	"github.com/changedesk/api/internal/platform/httpx"
)

// DebugHandlers exposes development-only endpoints: minting a session for an
// arbitrary user and inspecting the resolved actor. Never mounted in
// production.
type DebugHandlers struct {
	sessions *auth.SessionManager
}

// NewDebugHandlers constructs the debug handlers.
func NewDebugHandlers(sessions *auth.SessionManager) *DebugHandlers {
	return &DebugHandlers{sessions: sessions}
}

// Routes wires the debug endpoints onto the web router.
func (h *DebugHandlers) Routes(r chi.Router) {
	r.Post("/debug/session", h.mintSession)
	r.Get("/debug/actor", h.actor)
}

type mintSessionRequest struct {
	UserID string `json:"userId"`
}

func (h *DebugHandlers) mintSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req mintSessionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if req.UserID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "userId is required", http.StatusBadRequest))
		return
	}

	signed, expiresAt, err := h.sessions.Issue(domain.UserID(req.UserID))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("INTERNAL", "internal error", http.StatusInternalServerError))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"userId":    req.UserID,
		"expiresAt": expiresAt.Format(time.RFC3339),
	})
}

func (h *DebugHandlers) actor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("INTERNAL", "no actor resolved", http.StatusInternalServerError))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"kind":     string(actor.Kind),
		"userId":   string(actor.UserID),
		"deviceId": string(actor.DeviceID),
		"guestId":  actor.GuestID,
	})
}
