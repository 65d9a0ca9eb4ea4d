package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/payments"
)

type stubTicketService struct {
	TicketService
	getPublic func(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error)
	markPaid  func(ctx context.Context, id domain.TicketID) (domain.Ticket, error)
}

func (s *stubTicketService) GetPublic(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error) {
	return s.getPublic(ctx, publicID)
}

func (s *stubTicketService) MarkPaid(ctx context.Context, id domain.TicketID) (domain.Ticket, error) {
	return s.markPaid(ctx, id)
}

func newTestPaymentService(t *testing.T, tickets TicketService, provider payments.Provider, production bool) PaymentService {
	t.Helper()
	svc, err := NewPaymentService(PaymentServiceDeps{
		Tickets:    tickets,
		Provider:   provider,
		BaseURL:    "https://changedesk.test",
		Currency:   "usd",
		Production: production,
	})
	if err != nil {
		t.Fatalf("NewPaymentService: %v", err)
	}
	return svc
}

func completedEvent(metadata map[string]string) payments.WebhookEvent {
	return payments.WebhookEvent{
		Type:              payments.EventTypeCheckoutCompleted,
		ProviderSessionID: "cs_test_123",
		Metadata:          metadata,
	}
}

func TestStartPublicCheckout(t *testing.T) {
	tickets := &stubTicketService{
		getPublic: func(_ context.Context, _ domain.TicketPublicID) (domain.Ticket, error) {
			return storedTicket(domain.TicketStatusApproved), nil
		},
	}
	var captured payments.CheckoutSessionRequest
	provider := &stubProvider{
		createSession: func(_ context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
			captured = req
			return payments.CheckoutSession{URL: "https://pay.test/cs_test_123", ProviderSessionID: "cs_test_123"}, nil
		},
	}
	svc := newTestPaymentService(t, tickets, provider, false)

	redirect, err := svc.StartPublicCheckout(context.Background(), "pub_TESTTOKEN")
	if err != nil {
		t.Fatalf("StartPublicCheckout: %v", err)
	}
	if redirect.URL != "https://pay.test/cs_test_123" {
		t.Errorf("redirect url = %q", redirect.URL)
	}
	if captured.AmountCents != 4500 {
		t.Errorf("amount = %d, want exact ticket price", captured.AmountCents)
	}
	if captured.Metadata[metadataTicketID] != "tck_01TEST" {
		t.Errorf("metadata ticket id = %q", captured.Metadata[metadataTicketID])
	}
	if captured.SuccessURL != "https://changedesk.test/t/pub_TESTTOKEN?checkout=success" {
		t.Errorf("success url = %q", captured.SuccessURL)
	}
}

func TestStartPublicCheckoutStatusGate(t *testing.T) {
	for _, status := range []domain.TicketStatus{
		domain.TicketStatusPending,
		domain.TicketStatusPaid,
		domain.TicketStatusRejected,
	} {
		t.Run(string(status), func(t *testing.T) {
			tickets := &stubTicketService{
				getPublic: func(_ context.Context, _ domain.TicketPublicID) (domain.Ticket, error) {
					return storedTicket(status), nil
				},
			}
			provider := &stubProvider{
				createSession: func(_ context.Context, _ payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
					t.Fatal("no session may be created for a non-approved ticket")
					return payments.CheckoutSession{}, nil
				},
			}
			svc := newTestPaymentService(t, tickets, provider, false)

			_, err := svc.StartPublicCheckout(context.Background(), "pub_TESTTOKEN")
			if got := domain.CodeOf(err); got != domain.CodeConflict {
				t.Fatalf("code = %q, want conflict (err=%v)", got, err)
			}
		})
	}
}

func TestStartPublicCheckoutUnknownTicket(t *testing.T) {
	tickets := &stubTicketService{
		getPublic: func(_ context.Context, _ domain.TicketPublicID) (domain.Ticket, error) {
			return domain.Ticket{}, domain.NotFound("ticket not found")
		},
	}
	svc := newTestPaymentService(t, tickets, &stubProvider{}, false)

	_, err := svc.StartPublicCheckout(context.Background(), "pub_UNKNOWN")
	if got := domain.CodeOf(err); got != domain.CodeNotFound {
		t.Fatalf("code = %q, want not_found (err=%v)", got, err)
	}
}

func TestStartPublicCheckoutProviderFailure(t *testing.T) {
	tickets := &stubTicketService{
		getPublic: func(_ context.Context, _ domain.TicketPublicID) (domain.Ticket, error) {
			return storedTicket(domain.TicketStatusApproved), nil
		},
	}
	provider := &stubProvider{
		createSession: func(_ context.Context, _ payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
			return payments.CheckoutSession{}, payments.NewError(payments.CodeProviderError, "psp unreachable", nil)
		},
	}
	svc := newTestPaymentService(t, tickets, provider, false)

	_, err := svc.StartPublicCheckout(context.Background(), "pub_TESTTOKEN")
	if got := payments.CodeOf(err); got != payments.CodeProviderError {
		t.Fatalf("code = %q, want provider error (err=%v)", got, err)
	}
}

func TestHandleWebhookMarksPaid(t *testing.T) {
	var marked domain.TicketID
	tickets := &stubTicketService{
		markPaid: func(_ context.Context, id domain.TicketID) (domain.Ticket, error) {
			marked = id
			return storedTicket(domain.TicketStatusPaid), nil
		},
	}
	provider := &stubProvider{
		verify: func(_ []byte, _ string) (payments.WebhookEvent, error) {
			return completedEvent(map[string]string{metadataTicketID: "tck_01TEST"}), nil
		},
	}
	svc := newTestPaymentService(t, tickets, provider, false)

	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if marked != "tck_01TEST" {
		t.Errorf("marked = %q", marked)
	}
}

func TestHandleWebhookDuplicateDeliveryAcked(t *testing.T) {
	calls := 0
	tickets := &stubTicketService{
		markPaid: func(_ context.Context, _ domain.TicketID) (domain.Ticket, error) {
			calls++
			if calls == 1 {
				return storedTicket(domain.TicketStatusPaid), nil
			}
			return domain.Ticket{}, domain.Conflict("only approved tickets can be paid")
		},
	}
	provider := &stubProvider{
		verify: func(_ []byte, _ string) (payments.WebhookEvent, error) {
			return completedEvent(map[string]string{metadataTicketID: "tck_01TEST"}), nil
		},
	}
	svc := newTestPaymentService(t, tickets, provider, false)

	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("duplicate delivery must be acknowledged, got %v", err)
	}
}

func TestHandleWebhookMissingTicketAcked(t *testing.T) {
	tickets := &stubTicketService{
		markPaid: func(_ context.Context, _ domain.TicketID) (domain.Ticket, error) {
			return domain.Ticket{}, domain.NotFound("ticket not found")
		},
	}
	provider := &stubProvider{
		verify: func(_ []byte, _ string) (payments.WebhookEvent, error) {
			return completedEvent(map[string]string{metadataTicketID: "tck_GONE"}), nil
		},
	}
	svc := newTestPaymentService(t, tickets, provider, false)

	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("missing ticket must be acknowledged, got %v", err)
	}
}

func TestHandleWebhookBadSignature(t *testing.T) {
	provider := &stubProvider{
		verify: func(_ []byte, _ string) (payments.WebhookEvent, error) {
			return payments.WebhookEvent{}, payments.NewError(payments.CodeSignatureInvalid, "signature mismatch", nil)
		},
	}
	svc := newTestPaymentService(t, &stubTicketService{}, provider, false)

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "bad")
	if got := payments.CodeOf(err); got != payments.CodeSignatureInvalid {
		t.Fatalf("code = %q, want signature invalid (err=%v)", got, err)
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	tickets := &stubTicketService{
		markPaid: func(_ context.Context, _ domain.TicketID) (domain.Ticket, error) {
			t.Fatal("unrelated events must not reconcile")
			return domain.Ticket{}, nil
		},
	}
	provider := &stubProvider{
		verify: func(_ []byte, _ string) (payments.WebhookEvent, error) {
			return payments.WebhookEvent{Type: "invoice.paid"}, nil
		},
	}
	svc := newTestPaymentService(t, tickets, provider, false)

	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unhandled event types must be acknowledged, got %v", err)
	}
}

func TestHandleWebhookNoCorrelation(t *testing.T) {
	provider := &stubProvider{
		verify: func(_ []byte, _ string) (payments.WebhookEvent, error) {
			return completedEvent(nil), nil
		},
	}

	t.Run("development fails loudly", func(t *testing.T) {
		svc := newTestPaymentService(t, &stubTicketService{}, provider, false)
		err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		if got := payments.CodeOf(err); got != payments.CodeSessionInvalid {
			t.Fatalf("code = %q, want session invalid (err=%v)", got, err)
		}
	})

	t.Run("production acknowledges", func(t *testing.T) {
		svc := newTestPaymentService(t, &stubTicketService{}, provider, true)
		if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
			t.Fatalf("production must acknowledge, got %v", err)
		}
	})
}

func TestHandleWebhookInfrastructureFailurePropagates(t *testing.T) {
	boom := errors.New("connection reset")
	tickets := &stubTicketService{
		markPaid: func(_ context.Context, _ domain.TicketID) (domain.Ticket, error) {
			return domain.Ticket{}, boom
		},
	}
	provider := &stubProvider{
		verify: func(_ []byte, _ string) (payments.WebhookEvent, error) {
			return completedEvent(map[string]string{metadataTicketID: "tck_01TEST"}), nil
		},
	}
	svc := newTestPaymentService(t, tickets, provider, false)

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want propagated infrastructure error", err)
	}
}
