// Package auth resolves the actor behind each inbound request: web session
// cookies become user actors, bearer device tokens become device actors,
// unauthenticated web visitors get a durable guest identity, and the public
// zone stays actorless. Actors live only in the request context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domain "github.com/changedesk/api/internal/domain"
)

const sessionIssuer = "changedesk"

// SessionManager issues and verifies the HS256 session tokens carried in the
// web cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager validates the signing secret and returns a manager.
func NewSessionManager(secret string, ttl time.Duration, clock func() time.Time) (*SessionManager, error) {
	if len(secret) < 32 {
		return nil, errors.New("auth: session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: session ttl must be positive")
	}
	if clock == nil {
		clock = time.Now
	}
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return clock().UTC() },
	}, nil
}

// Issue signs a session token for the user and returns it with its expiry.
func (m *SessionManager) Issue(userID domain.UserID) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("auth: user id must not be empty")
	}
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   string(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign session: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a session token and returns its subject. Any verification
// failure (bad signature, expiry, wrong algorithm) is reported as a single
// opaque error; callers fall back to the guest identity.
func (m *SessionManager) Parse(tokenString string) (domain.UserID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("auth: invalid session: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("auth: session has no subject")
	}
	return domain.UserID(claims.Subject), nil
}

func (m *SessionManager) keyFunc(_ *jwt.Token) (any, error) {
	return m.secret, nil
}
