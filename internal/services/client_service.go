package services

import (
	"context"
	"errors"
	"time"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/repositories"
)

// ClientServiceDeps wires the dependencies required by the client service.
type ClientServiceDeps struct {
	Clients repositories.ClientRepository
	Clock   func() time.Time
}

type clientService struct {
	clients repositories.ClientRepository
	now     func() time.Time
}

// NewClientService constructs a ClientService validating required dependencies.
func NewClientService(deps ClientServiceDeps) (ClientService, error) {
	if deps.Clients == nil {
		return nil, errors.New("client service: client repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &clientService{
		clients: deps.Clients,
		now:     func() time.Time { return clock().UTC() },
	}, nil
}

// Create validates the name and persists a client owned by the acting user.
func (s *clientService) Create(ctx context.Context, cmd CreateClientCommand) (domain.Client, error) {
	if cmd.Actor.Kind != domain.ActorKindUser && cmd.Actor.Kind != domain.ActorKindDevice {
		return domain.Client{}, domain.Forbidden("only authenticated users can create clients")
	}

	client, err := domain.NewClient(domain.ClientID(newID(clientIDPrefix)), cmd.Actor.UserID, cmd.Name, s.now())
	if err != nil {
		return domain.Client{}, err
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

// List returns the owner's clients.
func (s *clientService) List(ctx context.Context, owner domain.UserID) ([]domain.Client, error) {
	return s.clients.ListByOwner(ctx, owner)
}

// UserServiceDeps wires the dependencies required by the user service.
type UserServiceDeps struct {
	Users repositories.UserRepository
	Clock func() time.Time
}

type userService struct {
	users repositories.UserRepository
	now   func() time.Time
}

// NewUserService constructs a UserService validating required dependencies.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Users == nil {
		return nil, errors.New("user service: user repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &userService{
		users: deps.Users,
		now:   func() time.Time { return clock().UTC() },
	}, nil
}

// EnsureExists upserts the account row for an authenticated user.
func (s *userService) EnsureExists(ctx context.Context, id domain.UserID) error {
	if id == "" {
		return domain.Validation("userId must not be empty")
	}
	return s.users.Ensure(ctx, id, s.now())
}
