// Package services implements the application workflows: ticket lifecycle,
// client management, device pairing, device authentication, and payment
// orchestration. Services enforce policy and invariants; transports and
// repositories stay mechanism-only.
package services

import (
	"context"
	"time"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/repositories"
)

// CreateTicketCommand carries the caller-supplied fields for a new ticket.
type CreateTicketCommand struct {
	Actor      domain.Actor
	ClientID   domain.ClientID
	Message    string
	PriceCents int64
	AssetURL   *string
}

// TicketService owns the ticket lifecycle use-cases.
type TicketService interface {
	// Create constructs a pending ticket after a policy check.
	Create(ctx context.Context, cmd CreateTicketCommand) (domain.Ticket, error)
	// Approve transitions a pending ticket to approved as the acting owner.
	Approve(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error)
	// Reject transitions a pending ticket to rejected as the acting owner.
	Reject(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error)
	// MarkPaid transitions an approved ticket to paid. There is no actor:
	// the caller is the payment orchestrator acting on a verified provider
	// event, defended by the status precondition alone.
	MarkPaid(ctx context.Context, id domain.TicketID) (domain.Ticket, error)
	// Dashboard returns the owner's ticket projection.
	Dashboard(ctx context.Context, owner domain.UserID) ([]repositories.DashboardTicket, error)
	// GetPublic resolves a ticket by its public capability token.
	GetPublic(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error)
}

// CreateClientCommand carries the caller-supplied fields for a new client.
type CreateClientCommand struct {
	Actor domain.Actor
	Name  string
}

// ClientService owns client management.
type ClientService interface {
	Create(ctx context.Context, cmd CreateClientCommand) (domain.Client, error)
	List(ctx context.Context, owner domain.UserID) ([]domain.Client, error)
}

// UserService owns freelancer account bookkeeping.
type UserService interface {
	// EnsureExists inserts the account row on first authenticated visit.
	EnsureExists(ctx context.Context, id domain.UserID) error
}

// StartPairingResult returns the raw pairing code exactly once.
type StartPairingResult struct {
	PairingCode string
	ExpiresAt   time.Time
}

// CompletePairingCommand carries the raw code plus optional device metadata.
type CompletePairingCommand struct {
	PairingCode string
	Label       string
	UserAgent   string
}

// CompletePairingResult returns the raw device token exactly once; it is
// never retrievable again, only re-issuable through a fresh pairing cycle.
type CompletePairingResult struct {
	DeviceToken string
	DeviceID    domain.DeviceID
	UserID      domain.UserID
}

// PairingService owns the two-phase device pairing handshake and device
// lifecycle.
type PairingService interface {
	Start(ctx context.Context, userID domain.UserID) (StartPairingResult, error)
	Complete(ctx context.Context, cmd CompletePairingCommand) (CompletePairingResult, error)
	// Revoke permanently invalidates a device credential owned by the actor.
	Revoke(ctx context.Context, actor domain.Actor, id domain.DeviceID) error
}

// DeviceIdentity is the canonical resolution of a device credential.
type DeviceIdentity struct {
	DeviceID domain.DeviceID
	UserID   domain.UserID
}

// DeviceAuthService authenticates device tokens on each request.
type DeviceAuthService interface {
	// Authenticate resolves a raw device token. Unknown and revoked tokens
	// are both reported as not ok; the error is reserved for
	// infrastructure failures.
	Authenticate(ctx context.Context, rawToken string) (DeviceIdentity, bool, error)
}

// CheckoutRedirect is the provider-hosted payment page for a ticket.
type CheckoutRedirect struct {
	URL               string
	ProviderSessionID string
}

// PaymentService orchestrates public checkout and webhook reconciliation.
type PaymentService interface {
	// StartPublicCheckout gates on ticket status and creates a provider
	// checkout session for the exact ticket price.
	StartPublicCheckout(ctx context.Context, publicID domain.TicketPublicID) (CheckoutRedirect, error)
	// HandleWebhook verifies and reconciles one provider event. Domain
	// conflicts are swallowed so at-least-once deliveries stay idempotent;
	// infrastructure failures propagate so the provider retries.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
