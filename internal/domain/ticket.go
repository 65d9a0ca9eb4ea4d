package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// TicketStatus enumerates the ticket lifecycle states.
type TicketStatus string

const (
	// TicketStatusPending is the initial state of every ticket.
	TicketStatusPending TicketStatus = "pending"
	// TicketStatusApproved means the owner accepted the request; payment may start.
	TicketStatusApproved TicketStatus = "approved"
	// TicketStatusPaid is the terminal success state.
	TicketStatusPaid TicketStatus = "paid"
	// TicketStatusRejected is the terminal failure state.
	TicketStatusRejected TicketStatus = "rejected"
)

const maxTicketMessageLen = 2000

// Ticket is one billable change request moving through approval and payment.
// Ownership (UserID) is fixed at creation and status only advances along
// pending→approved→paid or pending→rejected.
type Ticket struct {
	ID       TicketID
	PublicID TicketPublicID
	UserID   UserID
	ClientID ClientID

	// Message is the client's request, stored verbatim after trimming.
	Message    string
	PriceCents Cents

	Status TicketStatus

	AssetURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTicketInput carries everything needed to construct a pending ticket.
type NewTicketInput struct {
	ID         TicketID
	PublicID   TicketPublicID
	UserID     UserID
	ClientID   ClientID
	Message    string
	PriceCents Cents
	AssetURL   *string
	Now        time.Time
}

// NewTicket validates the input and returns a pending ticket with both
// timestamps stamped to the same instant.
func NewTicket(input NewTicketInput) (Ticket, error) {
	msg := strings.TrimSpace(input.Message)
	if msg == "" {
		return Ticket{}, Validation("ticket message must not be empty")
	}
	if utf8.RuneCountInString(msg) > maxTicketMessageLen {
		return Ticket{}, Validation("ticket message exceeds 2000 characters")
	}
	if input.PriceCents < 0 {
		return Ticket{}, Validation("priceCents must not be negative")
	}

	now := input.Now.UTC()
	return Ticket{
		ID:         input.ID,
		PublicID:   input.PublicID,
		UserID:     input.UserID,
		ClientID:   input.ClientID,
		Message:    msg,
		PriceCents: input.PriceCents,
		Status:     TicketStatusPending,
		AssetURL:   input.AssetURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Approve transitions a pending ticket to approved. Any other starting
// status fails with a conflict and leaves the ticket untouched.
func Approve(t Ticket, now time.Time) (Ticket, error) {
	if t.Status != TicketStatusPending {
		return t, Conflict("only pending tickets can be approved")
	}
	t.Status = TicketStatusApproved
	t.UpdatedAt = now.UTC()
	return t, nil
}

// Reject transitions a pending ticket to rejected.
func Reject(t Ticket, now time.Time) (Ticket, error) {
	if t.Status != TicketStatusPending {
		return t, Conflict("only pending tickets can be rejected")
	}
	t.Status = TicketStatusRejected
	t.UpdatedAt = now.UTC()
	return t, nil
}

// MarkPaid transitions an approved ticket to paid.
func MarkPaid(t Ticket, now time.Time) (Ticket, error) {
	if t.Status != TicketStatusApproved {
		return t, Conflict("only approved tickets can be marked paid")
	}
	t.Status = TicketStatusPaid
	t.UpdatedAt = now.UTC()
	return t, nil
}

// ParseTicketStatus validates a persisted status value.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	switch TicketStatus(raw) {
	case TicketStatusPending, TicketStatusApproved, TicketStatusPaid, TicketStatusRejected:
		return TicketStatus(raw), nil
	default:
		return "", Invariant("unknown ticket status " + raw)
	}
}
