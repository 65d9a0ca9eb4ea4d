package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/repositories"
)

// PairingTokenRepo implements repositories.PairingTokenRepository using
// PostgreSQL.
type PairingTokenRepo struct{ db *DB }

// NewPairingTokenRepo constructs a pairing token repository.
func NewPairingTokenRepo(db *DB) *PairingTokenRepo { return &PairingTokenRepo{db: db} }

// Create inserts a new pairing token row. Only the code hash is stored.
func (r *PairingTokenRepo) Create(ctx context.Context, t domain.PairingToken) error {
	const q = `
INSERT INTO pairing_tokens (id, user_id, token_hash, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, string(t.UserID), t.TokenHash, t.ExpiresAt, t.CreatedAt)
	if isUniqueViolation(err) {
		return repositories.ErrConflict
	}
	return err
}

// Consume is a single atomic check-and-mark: the used/expired/missing checks
// are folded into the UPDATE predicate, so of two concurrent calls with the
// same code exactly one sees an affected row. Missing, used, and expired
// all surface as ErrNotFound.
func (r *PairingTokenRepo) Consume(ctx context.Context, tokenHash string, now time.Time) (domain.UserID, error) {
	const q = `
UPDATE pairing_tokens
SET used_at = $2
WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
RETURNING user_id`
	var userID string
	if err := r.db.Pool.QueryRow(ctx, q, tokenHash, now).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repositories.ErrNotFound
		}
		return "", err
	}
	return domain.UserID(userID), nil
}
