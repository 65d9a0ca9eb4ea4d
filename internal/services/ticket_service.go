package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/platform/metrics"
	"github.com/changedesk/api/internal/platform/token"
	"github.com/changedesk/api/internal/repositories"
)

const (
	ticketIDPrefix  = "tck_"
	clientIDPrefix  = "cli_"
	deviceIDPrefix  = "dev_"
	pairingIDPrefix = "prt_"
)

func newID(prefix string) string {
	return prefix + ulid.Make().String()
}

// TicketServiceDeps wires the dependencies required by the ticket service.
type TicketServiceDeps struct {
	Tickets repositories.TicketRepository
	Clients repositories.ClientRepository
	Clock   func() time.Time

	// NewPublicID overrides the capability token generator in tests.
	NewPublicID func() (string, error)
}

type ticketService struct {
	tickets     repositories.TicketRepository
	clients     repositories.ClientRepository
	now         func() time.Time
	newPublicID func() (string, error)
}

// NewTicketService constructs a TicketService validating required dependencies.
func NewTicketService(deps TicketServiceDeps) (TicketService, error) {
	if deps.Tickets == nil {
		return nil, errors.New("ticket service: ticket repository is required")
	}
	if deps.Clients == nil {
		return nil, errors.New("ticket service: client repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newPublicID := deps.NewPublicID
	if newPublicID == nil {
		newPublicID = token.NewPublicID
	}
	return &ticketService{
		tickets:     deps.Tickets,
		clients:     deps.Clients,
		now:         func() time.Time { return clock().UTC() },
		newPublicID: newPublicID,
	}, nil
}

// Create checks policy, validates the target client, and persists a pending
// ticket.
func (s *ticketService) Create(ctx context.Context, cmd CreateTicketCommand) (domain.Ticket, error) {
	if err := domain.Authorize(cmd.Actor, domain.ActionCreate, nil); err != nil {
		return domain.Ticket{}, err
	}

	client, err := s.clients.FindByID(ctx, cmd.ClientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.Ticket{}, domain.NotFound("client not found")
		}
		return domain.Ticket{}, err
	}
	if client.UserID != cmd.Actor.UserID {
		return domain.Ticket{}, domain.Forbidden("client belongs to another account")
	}

	price, err := domain.ParseCents(cmd.PriceCents)
	if err != nil {
		return domain.Ticket{}, err
	}
	publicID, err := s.newPublicID()
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("ticket service: mint public id: %w", err)
	}

	ticket, err := domain.NewTicket(domain.NewTicketInput{
		ID:         domain.TicketID(newID(ticketIDPrefix)),
		PublicID:   domain.TicketPublicID(publicID),
		UserID:     cmd.Actor.UserID,
		ClientID:   cmd.ClientID,
		Message:    cmd.Message,
		PriceCents: price,
		AssetURL:   cmd.AssetURL,
		Now:        s.now(),
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

// Approve loads, authorizes ownership, transitions, and persists with the
// pending-status precondition.
func (s *ticketService) Approve(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error) {
	return s.transitionAsActor(ctx, actor, id, domain.ActionApprove, domain.Approve, "approve")
}

// Reject mirrors Approve for the rejection edge.
func (s *ticketService) Reject(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error) {
	return s.transitionAsActor(ctx, actor, id, domain.ActionReject, domain.Reject, "reject")
}

// MarkPaid applies the approved→paid edge without a policy check; the
// webhook path carries no actor and relies on the status precondition.
func (s *ticketService) MarkPaid(ctx context.Context, id domain.TicketID) (domain.Ticket, error) {
	ticket, err := s.mustGet(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}
	return s.applyTransition(ctx, ticket, domain.MarkPaid, "markPaid")
}

// Dashboard returns the owner's projection; a plain read, no policy needed
// beyond the owner scoping baked into the query.
func (s *ticketService) Dashboard(ctx context.Context, owner domain.UserID) ([]repositories.DashboardTicket, error) {
	return s.tickets.ListForDashboard(ctx, owner)
}

// GetPublic resolves a ticket by public id. Possession of the unguessable
// id is the credential; the policy allows public view once resolved.
func (s *ticketService) GetPublic(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error) {
	ticket, err := s.tickets.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.Ticket{}, domain.NotFound("ticket not found")
		}
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (s *ticketService) transitionAsActor(
	ctx context.Context,
	actor domain.Actor,
	id domain.TicketID,
	action domain.Action,
	transition func(domain.Ticket, time.Time) (domain.Ticket, error),
	name string,
) (domain.Ticket, error) {
	ticket, err := s.mustGet(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}
	if err := domain.Authorize(actor, action, &ticket); err != nil {
		return domain.Ticket{}, err
	}
	return s.applyTransition(ctx, ticket, transition, name)
}

func (s *ticketService) applyTransition(
	ctx context.Context,
	ticket domain.Ticket,
	transition func(domain.Ticket, time.Time) (domain.Ticket, error),
	name string,
) (domain.Ticket, error) {
	prior := ticket.Status
	next, err := transition(ticket, s.now())
	if err != nil {
		metrics.TrackTransition(name, metrics.OutcomeConflict)
		return domain.Ticket{}, err
	}

	if err := s.tickets.UpdateStatus(ctx, next, prior); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// A concurrent transition won the race; the entity is unchanged
			// from this call's perspective.
			metrics.TrackTransition(name, metrics.OutcomeConflict)
			return domain.Ticket{}, domain.Conflict("ticket status changed concurrently")
		}
		metrics.TrackTransition(name, metrics.OutcomeError)
		return domain.Ticket{}, err
	}

	metrics.TrackTransition(name, metrics.OutcomeApplied)
	return next, nil
}

func (s *ticketService) mustGet(ctx context.Context, id domain.TicketID) (domain.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.Ticket{}, domain.NotFound("ticket not found")
		}
		return domain.Ticket{}, err
	}
	return ticket, nil
}
