package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/platform/httpx"
	"github.com/changedesk/api/internal/platform/requestctx"
	"github.com/changedesk/api/internal/platform/token"
	"github.com/changedesk/api/internal/services"
)

const (
	// SessionCookieName carries the signed web session token.
	SessionCookieName = "cd_session"
	// GuestCookieName carries the durable anonymous visitor id.
	GuestCookieName = "cd_guest"

	bearerPrefix = "Bearer "
)

// MiddlewareDeps wires the dependencies of the actor-resolution middleware.
type MiddlewareDeps struct {
	Sessions   *SessionManager
	DeviceAuth services.DeviceAuthService
	Users      services.UserService

	// GuestCookieAge bounds the anonymous visitor cookie lifetime.
	GuestCookieAge time.Duration

	// SecureCookies marks cookies Secure; enabled in production.
	SecureCookies bool
}

// Middleware installs a resolved actor into the request context, one
// resolver per trust zone.
type Middleware struct {
	sessions       *SessionManager
	deviceAuth     services.DeviceAuthService
	users          services.UserService
	guestCookieAge time.Duration
	secureCookies  bool
}

// NewMiddleware constructs the middleware validating required dependencies.
func NewMiddleware(deps MiddlewareDeps) (*Middleware, error) {
	if deps.Sessions == nil {
		return nil, errors.New("auth: session manager is required")
	}
	if deps.DeviceAuth == nil {
		return nil, errors.New("auth: device auth service is required")
	}
	if deps.Users == nil {
		return nil, errors.New("auth: user service is required")
	}
	age := deps.GuestCookieAge
	if age <= 0 {
		age = 90 * 24 * time.Hour
	}
	return &Middleware{
		sessions:       deps.Sessions,
		deviceAuth:     deps.DeviceAuth,
		users:          deps.Users,
		guestCookieAge: age,
		secureCookies:  deps.SecureCookies,
	}, nil
}

// WebActor resolves the web trust zone: a valid session cookie yields a user
// actor and upserts the account row; anything else yields a guest actor
// backed by a durable cookie minted on first sight.
func (m *Middleware) WebActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			userID, parseErr := m.sessions.Parse(cookie.Value)
			if parseErr == nil {
				if err := m.users.EnsureExists(ctx, userID); err != nil {
					// The row upsert retries on the next request; the
					// session itself is still good.
					requestctx.Logger(ctx).Warn("user row upsert failed",
						zap.String("user_id", string(userID)),
						zap.Error(err),
					)
				}
				next.ServeHTTP(w, r.WithContext(WithActor(ctx, domain.UserActor(userID))))
				return
			}
			requestctx.Logger(ctx).Debug("session cookie rejected", zap.Error(parseErr))
		}

		guestID, minted, err := m.guestIdentity(r)
		if err != nil {
			requestctx.Logger(ctx).Error("guest identity unavailable", zap.Error(err))
			httpx.WriteError(ctx, w, httpx.NewError("INTERNAL", "internal error", http.StatusInternalServerError))
			return
		}
		if minted {
			http.SetCookie(w, &http.Cookie{
				Name:     GuestCookieName,
				Value:    guestID,
				Path:     "/",
				MaxAge:   int(m.guestCookieAge / time.Second),
				HttpOnly: true,
				Secure:   m.secureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithActor(ctx, domain.GuestActor(guestID))))
	})
}

// RequireUser rejects requests whose resolved actor is not an authenticated
// user. It runs after WebActor.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok || actor.Kind != domain.ActorKindUser {
			httpx.WriteError(r.Context(), w, httpx.NewError("UNAUTHENTICATED", "sign in required", http.StatusUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DeviceActor resolves the companion-device trust zone from the bearer
// token. Unknown and revoked tokens are both a 401; only infrastructure
// failures surface as 500.
func (m *Middleware) DeviceActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw := bearerToken(r)
		if raw == "" {
			httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "device token required", http.StatusUnauthorized))
			return
		}

		identity, ok, err := m.deviceAuth.Authenticate(ctx, raw)
		if err != nil {
			requestctx.Logger(ctx).Error("device authentication failed", zap.Error(err))
			httpx.WriteError(ctx, w, httpx.NewError("INTERNAL", "internal error", http.StatusInternalServerError))
			return
		}
		if !ok {
			httpx.WriteError(ctx, w, httpx.NewError("UNAUTHENTICATED", "invalid device token", http.StatusUnauthorized))
			return
		}

		actor := domain.DeviceActor(identity.DeviceID, identity.UserID)
		next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
	})
}

// PublicActor installs the identityless actor for the public trust zone.
func (m *Middleware) PublicActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), domain.PublicActor())))
	})
}

func (m *Middleware) guestIdentity(r *http.Request) (id string, minted bool, err error) {
	if cookie, err := r.Cookie(GuestCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, false, nil
	}
	id, err = token.NewSecret()
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}
