package services

import (
	"context"
	"time"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/payments"
	"github.com/changedesk/api/internal/repositories"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type stubTicketRepo struct {
	findByID       func(ctx context.Context, id domain.TicketID) (domain.Ticket, error)
	findByPublicID func(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error)
	create         func(ctx context.Context, ticket domain.Ticket) error
	updateStatus   func(ctx context.Context, ticket domain.Ticket, expected domain.TicketStatus) error
	list           func(ctx context.Context, owner domain.UserID) ([]repositories.DashboardTicket, error)
}

func (s *stubTicketRepo) FindByID(ctx context.Context, id domain.TicketID) (domain.Ticket, error) {
	return s.findByID(ctx, id)
}

func (s *stubTicketRepo) FindByPublicID(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error) {
	return s.findByPublicID(ctx, publicID)
}

func (s *stubTicketRepo) Create(ctx context.Context, ticket domain.Ticket) error {
	return s.create(ctx, ticket)
}

func (s *stubTicketRepo) UpdateStatus(ctx context.Context, ticket domain.Ticket, expected domain.TicketStatus) error {
	return s.updateStatus(ctx, ticket, expected)
}

func (s *stubTicketRepo) ListForDashboard(ctx context.Context, owner domain.UserID) ([]repositories.DashboardTicket, error) {
	return s.list(ctx, owner)
}

type stubClientRepo struct {
	findByID    func(ctx context.Context, id domain.ClientID) (domain.Client, error)
	create      func(ctx context.Context, client domain.Client) error
	listByOwner func(ctx context.Context, owner domain.UserID) ([]domain.Client, error)
}

func (s *stubClientRepo) FindByID(ctx context.Context, id domain.ClientID) (domain.Client, error) {
	return s.findByID(ctx, id)
}

func (s *stubClientRepo) Create(ctx context.Context, client domain.Client) error {
	return s.create(ctx, client)
}

func (s *stubClientRepo) ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.Client, error) {
	return s.listByOwner(ctx, owner)
}

type stubDeviceRepo struct {
	create          func(ctx context.Context, device domain.Device) error
	findByID        func(ctx context.Context, id domain.DeviceID) (domain.Device, error)
	findByTokenHash func(ctx context.Context, tokenHash string) (domain.Device, error)
	touch           func(ctx context.Context, id domain.DeviceID, seenAt time.Time) error
	revoke          func(ctx context.Context, id domain.DeviceID, revokedAt time.Time) error
}

func (s *stubDeviceRepo) Create(ctx context.Context, device domain.Device) error {
	return s.create(ctx, device)
}

func (s *stubDeviceRepo) FindByID(ctx context.Context, id domain.DeviceID) (domain.Device, error) {
	return s.findByID(ctx, id)
}

func (s *stubDeviceRepo) FindByTokenHash(ctx context.Context, tokenHash string) (domain.Device, error) {
	return s.findByTokenHash(ctx, tokenHash)
}

func (s *stubDeviceRepo) Touch(ctx context.Context, id domain.DeviceID, seenAt time.Time) error {
	if s.touch == nil {
		return nil
	}
	return s.touch(ctx, id, seenAt)
}

func (s *stubDeviceRepo) Revoke(ctx context.Context, id domain.DeviceID, revokedAt time.Time) error {
	return s.revoke(ctx, id, revokedAt)
}

type stubPairingRepo struct {
	create  func(ctx context.Context, token domain.PairingToken) error
	consume func(ctx context.Context, tokenHash string, now time.Time) (domain.UserID, error)
}

func (s *stubPairingRepo) Create(ctx context.Context, token domain.PairingToken) error {
	return s.create(ctx, token)
}

func (s *stubPairingRepo) Consume(ctx context.Context, tokenHash string, now time.Time) (domain.UserID, error) {
	return s.consume(ctx, tokenHash, now)
}

type stubProvider struct {
	createSession func(ctx context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error)
	verify        func(payload []byte, signature string) (payments.WebhookEvent, error)
}

func (s *stubProvider) CreateCheckoutSession(ctx context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
	return s.createSession(ctx, req)
}

func (s *stubProvider) VerifyAndParseEvent(payload []byte, signature string) (payments.WebhookEvent, error) {
	return s.verify(payload, signature)
}
