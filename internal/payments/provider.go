// Package payments defines the payment provider port and its Stripe
// implementation. Integration failures carry their own code enum, disjoint
// from the domain error taxonomy.
package payments

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode discriminates payment integration failures. These are
// infrastructure-adjacent and must never be conflated with domain errors.
type ErrorCode string

const (
	// CodeConfigMissing indicates required provider configuration is absent.
	CodeConfigMissing ErrorCode = "CONFIG_MISSING"
	// CodeProviderError indicates the PSP call itself failed.
	CodeProviderError ErrorCode = "PAYMENT_PROVIDER_ERROR"
	// CodeSignatureInvalid indicates webhook signature verification failed.
	CodeSignatureInvalid ErrorCode = "WEBHOOK_SIGNATURE_INVALID"
	// CodeEventUnsupported indicates an event type the orchestrator does not handle.
	CodeEventUnsupported ErrorCode = "WEBHOOK_EVENT_UNSUPPORTED"
	// CodeSessionInvalid indicates a checkout session payload missing required data.
	CodeSessionInvalid ErrorCode = "CHECKOUT_SESSION_INVALID"
)

// Error is the single error type crossing the payments boundary. Callers
// dispatch on Code, never on message text.
type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying provider error when present.
func (e *Error) Unwrap() error { return e.cause }

// NewError constructs a payments error with an optional cause.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the payments error code from err, or "" when err is not a
// payments error.
func CodeOf(err error) ErrorCode {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}

// EventTypeCheckoutCompleted is the only event type the reconciler acts on.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// CheckoutSessionRequest captures the payload required to create a checkout
// session: the ticket's exact amount, a fixed currency, redirect URLs
// embedding the public id, and correlation metadata.
type CheckoutSessionRequest struct {
	AmountCents int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is the PSP session handed back to the public caller.
type CheckoutSession struct {
	URL               string
	ProviderSessionID string
}

// WebhookEvent is the normalised, signature-verified provider event.
type WebhookEvent struct {
	Type              string
	ProviderSessionID string
	Metadata          map[string]string
}

// Provider is the port the payment orchestrator depends on.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session with the PSP.
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error)
	// VerifyAndParseEvent verifies the webhook signature and normalises the
	// event, failing with CodeSignatureInvalid on a bad signature.
	VerifyAndParseEvent(payload []byte, signature string) (WebhookEvent, error)
}
