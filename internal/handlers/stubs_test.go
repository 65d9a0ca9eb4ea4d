package handlers

import (
	"context"
	"time"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/repositories"
	"github.com/changedesk/api/internal/services"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleTicket(status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		ID:         "tck_01TEST",
		PublicID:   "pub_TESTTOKEN",
		UserID:     "user-owner",
		ClientID:   "cli_01TEST",
		Message:    "resize the hero image",
		PriceCents: 4500,
		Status:     status,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
}

type stubTicketService struct {
	create    func(ctx context.Context, cmd services.CreateTicketCommand) (domain.Ticket, error)
	approve   func(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error)
	reject    func(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error)
	markPaid  func(ctx context.Context, id domain.TicketID) (domain.Ticket, error)
	dashboard func(ctx context.Context, owner domain.UserID) ([]repositories.DashboardTicket, error)
	getPublic func(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error)
}

func (s *stubTicketService) Create(ctx context.Context, cmd services.CreateTicketCommand) (domain.Ticket, error) {
	return s.create(ctx, cmd)
}

func (s *stubTicketService) Approve(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error) {
	return s.approve(ctx, actor, id)
}

func (s *stubTicketService) Reject(ctx context.Context, actor domain.Actor, id domain.TicketID) (domain.Ticket, error) {
	return s.reject(ctx, actor, id)
}

func (s *stubTicketService) MarkPaid(ctx context.Context, id domain.TicketID) (domain.Ticket, error) {
	return s.markPaid(ctx, id)
}

func (s *stubTicketService) Dashboard(ctx context.Context, owner domain.UserID) ([]repositories.DashboardTicket, error) {
	return s.dashboard(ctx, owner)
}

func (s *stubTicketService) GetPublic(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error) {
	return s.getPublic(ctx, publicID)
}

type stubClientService struct {
	create func(ctx context.Context, cmd services.CreateClientCommand) (domain.Client, error)
	list   func(ctx context.Context, owner domain.UserID) ([]domain.Client, error)
}

func (s *stubClientService) Create(ctx context.Context, cmd services.CreateClientCommand) (domain.Client, error) {
	return s.create(ctx, cmd)
}

func (s *stubClientService) List(ctx context.Context, owner domain.UserID) ([]domain.Client, error) {
	return s.list(ctx, owner)
}

type stubPairingService struct {
	start    func(ctx context.Context, userID domain.UserID) (services.StartPairingResult, error)
	complete func(ctx context.Context, cmd services.CompletePairingCommand) (services.CompletePairingResult, error)
	revoke   func(ctx context.Context, actor domain.Actor, id domain.DeviceID) error
}

func (s *stubPairingService) Start(ctx context.Context, userID domain.UserID) (services.StartPairingResult, error) {
	return s.start(ctx, userID)
}

func (s *stubPairingService) Complete(ctx context.Context, cmd services.CompletePairingCommand) (services.CompletePairingResult, error) {
	return s.complete(ctx, cmd)
}

func (s *stubPairingService) Revoke(ctx context.Context, actor domain.Actor, id domain.DeviceID) error {
	return s.revoke(ctx, actor, id)
}

type stubPaymentService struct {
	startCheckout func(ctx context.Context, publicID domain.TicketPublicID) (services.CheckoutRedirect, error)
	handleWebhook func(ctx context.Context, payload []byte, signature string) error
}

func (s *stubPaymentService) StartPublicCheckout(ctx context.Context, publicID domain.TicketPublicID) (services.CheckoutRedirect, error) {
	return s.startCheckout(ctx, publicID)
}

func (s *stubPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return s.handleWebhook(ctx, payload, signature)
}
