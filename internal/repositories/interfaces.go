package repositories

import (
	"context"
	"errors"
	"time"

	domain "github.com/changedesk/api/internal/domain"
)

// Sentinel errors shared by all repository implementations so services can
// map persistence outcomes without knowing the backend.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("repositories: not found")
	// ErrConflict indicates a conditional write found the row in an
	// unexpected state (optimistic status precondition failed) or a unique
	// constraint was violated.
	ErrConflict = errors.New("repositories: conflict")
)

// DashboardTicket is the flat projection returned for the owner dashboard;
// it joins the client name onto the ticket row.
type DashboardTicket struct {
	ID         domain.TicketID
	PublicID   domain.TicketPublicID
	Status     domain.TicketStatus
	Message    string
	PriceCents domain.Cents
	AssetURL   *string
	CreatedAt  time.Time

	ClientID   domain.ClientID
	ClientName string
}

// TicketRepository persists tickets.
type TicketRepository interface {
	FindByID(ctx context.Context, id domain.TicketID) (domain.Ticket, error)
	FindByPublicID(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error)
	Create(ctx context.Context, ticket domain.Ticket) error

	// UpdateStatus writes the new status and updatedAt, conditioned on the
	// row still holding expected. A stale precondition fails with
	// ErrConflict so concurrent transitions cannot both apply.
	UpdateStatus(ctx context.Context, ticket domain.Ticket, expected domain.TicketStatus) error

	ListForDashboard(ctx context.Context, owner domain.UserID) ([]DashboardTicket, error)
}

// ClientRepository persists freelancer clients.
type ClientRepository interface {
	FindByID(ctx context.Context, id domain.ClientID) (domain.Client, error)
	Create(ctx context.Context, client domain.Client) error
	ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.Client, error)
}

// UserRepository persists freelancer accounts.
type UserRepository interface {
	// Ensure inserts the user row if it does not already exist.
	Ensure(ctx context.Context, id domain.UserID, now time.Time) error
}

// DeviceRepository persists paired devices. Tokens are referenced only by
// their one-way hash.
type DeviceRepository interface {
	Create(ctx context.Context, device domain.Device) error
	FindByID(ctx context.Context, id domain.DeviceID) (domain.Device, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (domain.Device, error)
	// Touch updates lastSeenAt; callers treat failures as non-critical.
	Touch(ctx context.Context, id domain.DeviceID, seenAt time.Time) error
	// Revoke permanently invalidates the device credential.
	Revoke(ctx context.Context, id domain.DeviceID, revokedAt time.Time) error
}

// PairingTokenRepository persists short-lived pairing codes.
type PairingTokenRepository interface {
	Create(ctx context.Context, token domain.PairingToken) error

	// Consume atomically marks the token used and returns its owner. A
	// token that is missing, already used, or expired fails with
	// ErrNotFound; the three causes are indistinguishable to callers.
	Consume(ctx context.Context, tokenHash string, now time.Time) (domain.UserID, error)
}
