package domain

import (
	"strings"
)

// UserID identifies a freelancer account. Ids from different entities are
// deliberately distinct types so they cannot be swapped without an explicit
// conversion.
type UserID string

// ClientID identifies a client belonging to a freelancer.
type ClientID string

// TicketID is the internal ticket identifier. It is never exposed outside
// the API surface; public access goes through TicketPublicID.
type TicketID string

// TicketPublicID is the unguessable capability token granting access to a
// ticket without authentication. Possession is the credential, so values
// must come from a cryptographically strong generator.
type TicketPublicID string

// DeviceID identifies a paired companion device.
type DeviceID string

// ParseUserID validates and converts a raw string into a UserID.
func ParseUserID(raw string) (UserID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", Validation("userId must not be empty")
	}
	return UserID(id), nil
}

// ParseClientID validates and converts a raw string into a ClientID.
func ParseClientID(raw string) (ClientID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", Validation("clientId must not be empty")
	}
	return ClientID(id), nil
}

// ParseTicketID validates and converts a raw string into a TicketID.
func ParseTicketID(raw string) (TicketID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", Validation("ticketId must not be empty")
	}
	return TicketID(id), nil
}

// ParseTicketPublicID validates and converts a raw string into a TicketPublicID.
func ParseTicketPublicID(raw string) (TicketPublicID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", Validation("publicId must not be empty")
	}
	return TicketPublicID(id), nil
}

// ParseDeviceID validates and converts a raw string into a DeviceID.
func ParseDeviceID(raw string) (DeviceID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", Validation("deviceId must not be empty")
	}
	return DeviceID(id), nil
}

// Cents is a non-negative money amount in the smallest currency unit.
type Cents int64

// ParseCents validates a raw amount, rejecting negative values.
func ParseCents(n int64) (Cents, error) {
	if n < 0 {
		return 0, Validation("priceCents must not be negative")
	}
	return Cents(n), nil
}
