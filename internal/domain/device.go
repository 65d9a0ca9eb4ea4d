package domain

import (
	"time"
)

// Device is a long-lived proxy for its owning user, created by completing a
// pairing handshake. The credential is stored only as a one-way hash; the
// raw token is returned exactly once at pairing completion. Revocation is
// terminal.
type Device struct {
	ID        DeviceID
	UserID    UserID
	TokenHash string
	Label     string
	UserAgent string
	RevokedAt *time.Time
	LastSeen  *time.Time
	CreatedAt time.Time
}

// Revoked reports whether the device credential has been invalidated.
func (d Device) Revoked() bool {
	return d.RevokedAt != nil
}

// PairingToken is a short-lived single-use code bound to a user. Once used
// or expired it is permanently dead; consumption must be atomic so two
// concurrent completions cannot both succeed.
type PairingToken struct {
	ID        string
	UserID    UserID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
