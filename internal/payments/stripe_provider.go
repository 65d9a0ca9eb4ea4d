package payments

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// constructEventFunc matches webhook.ConstructEvent and is swappable in tests.
type constructEventFunc func(payload []byte, sigHeader, secret string) (stripe.Event, error)

// StripeProviderConfig configures the StripeProvider.
type StripeProviderConfig struct {
	APIKey        string
	WebhookSecret string

	// Sessions and ConstructEvent override the live Stripe client in tests.
	Sessions       stripeSessionAPI
	ConstructEvent constructEventFunc
}

// StripeProvider implements the Provider interface using the Stripe SDK.
type StripeProvider struct {
	sessions       stripeSessionAPI
	webhookSecret  string
	constructEvent constructEventFunc
}

// NewStripeProvider constructs a Stripe Provider, failing with
// CodeConfigMissing when mandatory configuration is absent.
func NewStripeProvider(cfg StripeProviderConfig) (*StripeProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" && cfg.Sessions == nil {
		return nil, NewError(CodeConfigMissing, "stripe api key is required", nil)
	}
	secret := strings.TrimSpace(cfg.WebhookSecret)
	if secret == "" {
		return nil, NewError(CodeConfigMissing, "stripe webhook secret is required", nil)
	}

	sessions := cfg.Sessions
	if sessions == nil {
		sc := client.New(apiKey, nil)
		sessions = sc.CheckoutSessions
	}

	construct := cfg.ConstructEvent
	if construct == nil {
		construct = webhook.ConstructEvent
	}

	return &StripeProvider{
		sessions:       sessions,
		webhookSecret:  secret,
		constructEvent: construct,
	}, nil
}

// CreateCheckoutSession creates a Stripe Checkout session for a single line
// item carrying the ticket's exact amount.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error) {
	name := req.ProductName
	if name == "" {
		name = "Change request"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
			},
		},
	}
	params.Context = ctx
	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata))
		for k, v := range req.Metadata {
			params.Metadata[k] = v
		}
	}

	session, err := p.sessions.New(params)
	if err != nil {
		return CheckoutSession{}, NewError(CodeProviderError, "failed to create stripe checkout session", err)
	}
	if session == nil || session.URL == "" || session.ID == "" {
		return CheckoutSession{}, NewError(CodeProviderError, "stripe session created without url or id", nil)
	}

	return CheckoutSession{
		URL:               session.URL,
		ProviderSessionID: session.ID,
	}, nil
}

// VerifyAndParseEvent verifies the Stripe-Signature header against the raw
// payload and normalises the event. Session metadata is only extracted for
// completed checkouts; other event types pass through for the caller to
// ignore.
func (p *StripeProvider) VerifyAndParseEvent(payload []byte, signature string) (WebhookEvent, error) {
	event, err := p.constructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return WebhookEvent{}, NewError(CodeSignatureInvalid, "stripe webhook signature verification failed", err)
	}

	out := WebhookEvent{Type: string(event.Type)}
	if out.Type != EventTypeCheckoutCompleted {
		return out, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return WebhookEvent{}, NewError(CodeSessionInvalid, "cannot decode checkout session payload", err)
	}
	out.ProviderSessionID = session.ID
	out.Metadata = session.Metadata
	return out, nil
}
