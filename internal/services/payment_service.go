package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/payments"
	"github.com/changedesk/api/internal/platform/metrics"
	"github.com/changedesk/api/internal/platform/requestctx"
)

// metadataTicketID is the correlation key stamped into checkout session
// metadata and read back from completed events.
const metadataTicketID = "ticketId"

// PaymentServiceDeps wires the dependencies required by the payment
// orchestrator.
type PaymentServiceDeps struct {
	Tickets  TicketService
	Provider payments.Provider

	// BaseURL is the externally reachable origin used to build the redirect
	// URLs embedded in checkout sessions.
	BaseURL  string
	Currency string

	// Production relaxes the missing-correlation webhook policy: events
	// without a ticket id are logged and acknowledged instead of failed.
	Production bool
}

type paymentService struct {
	tickets    TicketService
	provider   payments.Provider
	baseURL    string
	currency   string
	production bool
}

// NewPaymentService constructs a PaymentService validating required
// dependencies.
func NewPaymentService(deps PaymentServiceDeps) (PaymentService, error) {
	if deps.Tickets == nil {
		return nil, errors.New("payment service: ticket service is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("payment service: payment provider is required")
	}
	if deps.BaseURL == "" {
		return nil, errors.New("payment service: base url is required")
	}
	currency := deps.Currency
	if currency == "" {
		currency = "usd"
	}
	return &paymentService{
		tickets:    deps.Tickets,
		provider:   deps.Provider,
		baseURL:    deps.BaseURL,
		currency:   currency,
		production: deps.Production,
	}, nil
}

// StartPublicCheckout resolves the ticket by its public id, gates on status,
// and creates a provider session for the exact price. Each status names its
// own refusal so the public page can explain itself.
func (s *paymentService) StartPublicCheckout(ctx context.Context, publicID domain.TicketPublicID) (CheckoutRedirect, error) {
	ticket, err := s.tickets.GetPublic(ctx, publicID)
	if err != nil {
		return CheckoutRedirect{}, err
	}

	switch ticket.Status {
	case domain.TicketStatusApproved:
		// Proceed.
	case domain.TicketStatusPending:
		return CheckoutRedirect{}, domain.Conflict("ticket has not been approved yet")
	case domain.TicketStatusPaid:
		return CheckoutRedirect{}, domain.Conflict("ticket is already paid")
	case domain.TicketStatusRejected:
		return CheckoutRedirect{}, domain.Conflict("rejected tickets cannot be paid")
	default:
		return CheckoutRedirect{}, domain.Invariant(fmt.Sprintf("unknown ticket status %q", ticket.Status))
	}

	publicURL := fmt.Sprintf("%s/t/%s", s.baseURL, ticket.PublicID)
	session, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutSessionRequest{
		AmountCents: int64(ticket.PriceCents),
		Currency:    s.currency,
		ProductName: "Change request",
		SuccessURL:  publicURL + "?checkout=success",
		CancelURL:   publicURL + "?checkout=cancelled",
		Metadata: map[string]string{
			metadataTicketID: string(ticket.ID),
			"publicId":       string(ticket.PublicID),
		},
	})
	if err != nil {
		return CheckoutRedirect{}, err
	}
	return CheckoutRedirect{
		URL:               session.URL,
		ProviderSessionID: session.ProviderSessionID,
	}, nil
}

// HandleWebhook verifies and reconciles one provider delivery. The error
// policy is asymmetric: domain outcomes (already paid, ticket gone) return
// nil so the provider stops retrying, while verification and infrastructure
// failures propagate so it retries.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	logger := requestctx.Logger(ctx)

	event, err := s.provider.VerifyAndParseEvent(payload, signature)
	if err != nil {
		metrics.TrackWebhookEvent("unverified", metrics.OutcomeError)
		return err
	}

	if event.Type != payments.EventTypeCheckoutCompleted {
		metrics.TrackWebhookEvent(event.Type, metrics.OutcomeIgnored)
		return nil
	}

	ticketID := event.Metadata[metadataTicketID]
	if ticketID == "" {
		if s.production {
			// Acknowledge so the provider does not retry a delivery we can
			// never correlate; the log line and counter are the only trace.
			logger.Error("checkout completed without ticket correlation",
				zap.String("provider_session_id", event.ProviderSessionID),
			)
			metrics.TrackWebhookEvent(event.Type, metrics.OutcomeMissingCorrelation)
			return nil
		}
		metrics.TrackWebhookEvent(event.Type, metrics.OutcomeMissingCorrelation)
		return payments.NewError(payments.CodeSessionInvalid, "checkout session metadata has no ticket id", nil)
	}

	if _, err := s.tickets.MarkPaid(ctx, domain.TicketID(ticketID)); err != nil {
		if domain.IsDomainError(err) {
			// Duplicate delivery or a ticket that moved on; both are
			// settled outcomes, not failures to retry.
			logger.Info("webhook reconciliation found nothing to apply",
				zap.String("ticket_id", ticketID),
				zap.String("code", string(domain.CodeOf(err))),
				zap.String("reason", err.Error()),
			)
			metrics.TrackWebhookEvent(event.Type, metrics.OutcomeConflict)
			return nil
		}
		metrics.TrackWebhookEvent(event.Type, metrics.OutcomeError)
		return err
	}

	logger.Info("ticket marked paid from checkout completion",
		zap.String("ticket_id", ticketID),
		zap.String("provider_session_id", event.ProviderSessionID),
	)
	metrics.TrackWebhookEvent(event.Type, metrics.OutcomeApplied)
	return nil
}
