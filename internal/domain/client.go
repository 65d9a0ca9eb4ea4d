package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxClientNameLen = 80

// Client is a freelancer's customer. Tickets reference a client but clients
// themselves carry no lifecycle.
type Client struct {
	ID        ClientID
	UserID    UserID
	Name      string
	CreatedAt time.Time
}

// NewClient validates the name (1-80 characters after trimming) and stamps
// the creation time.
func NewClient(id ClientID, owner UserID, name string, now time.Time) (Client, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Client{}, Validation("client name must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxClientNameLen {
		return Client{}, Validation("client name exceeds 80 characters")
	}
	return Client{
		ID:        id,
		UserID:    owner,
		Name:      trimmed,
		CreatedAt: now.UTC(),
	}, nil
}
