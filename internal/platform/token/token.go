// Package token mints and hashes the secrets used for pairing codes, device
// credentials, and ticket public ids. Secrets are generated from crypto/rand
// and persisted only as one-way hashes; public ids are capability tokens and
// must be unguessable.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
)

const secretBytes = 32

var publicIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewSecret returns a fresh 256-bit random secret, hex encoded. Used for
// pairing codes and device tokens.
func NewSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewPublicID returns a fresh unguessable ticket public id.
func NewPublicID() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: read random: %w", err)
	}
	return "pub_" + publicIDEncoding.EncodeToString(buf), nil
}

// Hash returns the hex-encoded SHA-256 digest of a raw secret. Raw secrets
// are high-entropy random values, so a fast unsalted digest is sufficient
// and keeps lookup-by-hash possible.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
