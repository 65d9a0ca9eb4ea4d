// Package handlers exposes the HTTP surface: one route group per trust zone
// with identity resolution installed at the group boundary, so no handler
// ever guesses who is calling.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/changedesk/api/internal/platform/auth"
	"github.com/changedesk/api/internal/platform/httpx"
	"github.com/changedesk/api/internal/platform/metrics"
	"github.com/changedesk/api/internal/services"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 60 * time.Second
)

// RouterDeps wires everything the HTTP surface needs.
type RouterDeps struct {
	Auth     *auth.Middleware
	Sessions *auth.SessionManager

	Tickets  services.TicketService
	Clients  services.ClientService
	Pairing  services.PairingService
	Payments services.PaymentService

	// Middlewares run on every request ahead of routing (request id,
	// logging).
	Middlewares []func(http.Handler) http.Handler

	// Production disables the debug endpoints.
	Production bool
}

// NewRouter builds the chi router: shared middleware, JSON not-found and
// method-not-allowed envelopes, health and metrics endpoints, and the four
// trust-zone groups.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(defaultTimeout))
	for _, mw := range deps.Middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("route_not_found", fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	tickets := NewTicketHandlers(deps.Tickets)
	clients := NewClientHandlers(deps.Clients)
	pairing := NewPairingHandlers(deps.Pairing)
	public := NewPublicHandlers(deps.Tickets, deps.Payments)
	webhooks := NewWebhookHandlers(deps.Payments)

	r.Route(apiPrefix, func(api chi.Router) {
		api.Route("/web", func(web chi.Router) {
			web.Use(deps.Auth.WebActor)
			if !deps.Production {
				debug := NewDebugHandlers(deps.Sessions)
				debug.Routes(web)
			}
			web.Group(func(authed chi.Router) {
				authed.Use(deps.Auth.RequireUser)
				tickets.Routes(authed)
				clients.Routes(authed)
				pairing.WebRoutes(authed)
			})
		})

		api.Route("/ext", func(ext chi.Router) {
			pairing.ExtRoutes(ext)
			ext.Group(func(device chi.Router) {
				device.Use(deps.Auth.DeviceActor)
				tickets.Routes(device)
			})
		})

		api.Route("/public", func(pub chi.Router) {
			pub.Use(deps.Auth.PublicActor)
			public.Routes(pub)
		})

		api.Route("/webhooks", func(hooks chi.Router) {
			webhooks.Routes(hooks)
		})
	})

	return r
}
