package services

import (
	"context"
	"strings"
	"testing"
	"time"

	domain "github.com/changedesk/api/internal/domain"
)

func newTestClientService(t *testing.T, clients *stubClientRepo) ClientService {
	t.Helper()
	svc, err := NewClientService(ClientServiceDeps{Clients: clients, Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewClientService: %v", err)
	}
	return svc
}

func TestClientServiceCreate(t *testing.T) {
	var stored domain.Client
	clients := &stubClientRepo{
		create: func(_ context.Context, client domain.Client) error {
			stored = client
			return nil
		},
	}
	svc := newTestClientService(t, clients)

	client, err := svc.Create(context.Background(), CreateClientCommand{
		Actor: domain.UserActor(ownerID),
		Name:  "  Acme Corp  ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if client.Name != "Acme Corp" {
		t.Errorf("name = %q, want trimmed", client.Name)
	}
	if client.UserID != ownerID {
		t.Errorf("owner = %q", client.UserID)
	}
	if stored.ID != client.ID {
		t.Errorf("persisted id = %q, returned %q", stored.ID, client.ID)
	}
}

func TestClientServiceCreateValidation(t *testing.T) {
	svc := newTestClientService(t, &stubClientRepo{})

	cases := map[string]string{
		"empty":    "   ",
		"too long": strings.Repeat("x", 81),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), CreateClientCommand{
				Actor: domain.UserActor(ownerID),
				Name:  value,
			})
			if got := domain.CodeOf(err); got != domain.CodeValidation {
				t.Fatalf("code = %q, want validation (err=%v)", got, err)
			}
		})
	}
}

func TestClientServiceCreateMultibyteName(t *testing.T) {
	clients := &stubClientRepo{
		create: func(_ context.Context, _ domain.Client) error { return nil },
	}
	svc := newTestClientService(t, clients)

	// 80 characters of multibyte text is within the limit even though it
	// is 160 bytes.
	name := strings.Repeat("ф", 80)
	client, err := svc.Create(context.Background(), CreateClientCommand{
		Actor: domain.UserActor(ownerID),
		Name:  name,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if client.Name != name {
		t.Errorf("name = %q, want %q", client.Name, name)
	}

	_, err = svc.Create(context.Background(), CreateClientCommand{
		Actor: domain.UserActor(ownerID),
		Name:  strings.Repeat("ф", 81),
	})
	if got := domain.CodeOf(err); got != domain.CodeValidation {
		t.Fatalf("code = %q, want validation (err=%v)", got, err)
	}
}

func TestClientServiceCreateGuestDenied(t *testing.T) {
	svc := newTestClientService(t, &stubClientRepo{})

	_, err := svc.Create(context.Background(), CreateClientCommand{
		Actor: domain.GuestActor("guest-1"),
		Name:  "Acme",
	})
	if got := domain.CodeOf(err); got != domain.CodeForbidden {
		t.Fatalf("code = %q, want forbidden (err=%v)", got, err)
	}
}

func TestUserServiceEnsureExists(t *testing.T) {
	var ensured domain.UserID
	var at time.Time
	svc, err := NewUserService(UserServiceDeps{
		Users: stubUserRepo(func(_ context.Context, id domain.UserID, now time.Time) error {
			ensured = id
			at = now
			return nil
		}),
		Clock: fixedClock,
	})
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}

	if err := svc.EnsureExists(context.Background(), ownerID); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	if ensured != ownerID || !at.Equal(testNow) {
		t.Errorf("ensured %q at %v", ensured, at)
	}

	if err := svc.EnsureExists(context.Background(), ""); domain.CodeOf(err) != domain.CodeValidation {
		t.Fatalf("empty id: err = %v, want validation", err)
	}
}

type stubUserRepo func(ctx context.Context, id domain.UserID, now time.Time) error

func (f stubUserRepo) Ensure(ctx context.Context, id domain.UserID, now time.Time) error {
	return f(ctx, id, now)
}
