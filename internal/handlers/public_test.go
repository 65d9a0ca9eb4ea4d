package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/services"
)

func newPublicRouter(tickets services.TicketService, payments services.PaymentService) chi.Router {
	r := chi.NewRouter()
	NewPublicHandlers(tickets, payments).Routes(r)
	return r
}

func TestPublicGetTicket(t *testing.T) {
	tickets := &stubTicketService{
		getPublic: func(_ context.Context, publicID domain.TicketPublicID) (domain.Ticket, error) {
			if publicID != "pub_TESTTOKEN" {
				t.Errorf("public id = %q", publicID)
			}
			return sampleTicket(domain.TicketStatusApproved), nil
		},
	}
	router := newPublicRouter(tickets, &stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/tickets/pub_TESTTOKEN", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	// The public payload must not leak internal identifiers.
	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, hidden := range []string{"id", "clientId", "userId"} {
		if _, present := raw[hidden]; present {
			t.Errorf("public payload leaks %q", hidden)
		}
	}
	if raw["publicId"] != "pub_TESTTOKEN" || raw["status"] != "approved" {
		t.Errorf("payload = %v", raw)
	}
}

func TestPublicGetTicketUnknown(t *testing.T) {
	tickets := &stubTicketService{
		getPublic: func(_ context.Context, _ domain.TicketPublicID) (domain.Ticket, error) {
			return domain.Ticket{}, domain.NotFound("ticket not found")
		},
	}
	router := newPublicRouter(tickets, &stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/tickets/pub_NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPublicStartCheckout(t *testing.T) {
	payments := &stubPaymentService{
		startCheckout: func(_ context.Context, publicID domain.TicketPublicID) (services.CheckoutRedirect, error) {
			return services.CheckoutRedirect{URL: "https://pay.test/cs_123"}, nil
		},
	}
	router := newPublicRouter(&stubTicketService{}, payments)

	req := httptest.NewRequest(http.MethodPost, "/tickets/pub_TESTTOKEN/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload checkoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.URL != "https://pay.test/cs_123" {
		t.Errorf("url = %q", payload.URL)
	}
}

func TestPublicStartCheckoutNotApproved(t *testing.T) {
	payments := &stubPaymentService{
		startCheckout: func(_ context.Context, _ domain.TicketPublicID) (services.CheckoutRedirect, error) {
			return services.CheckoutRedirect{}, domain.Conflict("ticket has not been approved yet")
		},
	}
	router := newPublicRouter(&stubTicketService{}, payments)

	req := httptest.NewRequest(http.MethodPost, "/tickets/pub_TESTTOKEN/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
