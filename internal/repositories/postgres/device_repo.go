package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/repositories"
)

// DeviceRepo implements repositories.DeviceRepository using PostgreSQL.
type DeviceRepo struct{ db *DB }

// NewDeviceRepo constructs a device repository.
func NewDeviceRepo(db *DB) *DeviceRepo { return &DeviceRepo{db: db} }

// Create inserts a new device row. Only the token hash is stored.
func (r *DeviceRepo) Create(ctx context.Context, d domain.Device) error {
	const q = `
INSERT INTO devices (id, user_id, token_hash, label, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, string(d.ID), string(d.UserID), d.TokenHash, d.Label, d.UserAgent, d.CreatedAt)
	if isUniqueViolation(err) {
		return repositories.ErrConflict
	}
	return err
}

// FindByTokenHash selects a device by the hash of its credential.
func (r *DeviceRepo) FindByTokenHash(ctx context.Context, tokenHash string) (domain.Device, error) {
	const q = `
SELECT id, user_id, token_hash, label, user_agent, revoked_at, last_seen_at, created_at
FROM devices WHERE token_hash=$1`
	return r.scanDevice(r.db.Pool.QueryRow(ctx, q, tokenHash))
}

// FindByID selects a device by id.
func (r *DeviceRepo) FindByID(ctx context.Context, id domain.DeviceID) (domain.Device, error) {
	const q = `
SELECT id, user_id, token_hash, label, user_agent, revoked_at, last_seen_at, created_at
FROM devices WHERE id=$1`
	return r.scanDevice(r.db.Pool.QueryRow(ctx, q, string(id)))
}

func (r *DeviceRepo) scanDevice(row pgx.Row) (domain.Device, error) {
	var (
		d      domain.Device
		id     string
		userID string
	)
	if err := row.Scan(&id, &userID, &d.TokenHash, &d.Label, &d.UserAgent, &d.RevokedAt, &d.LastSeen, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Device{}, repositories.ErrNotFound
		}
		return domain.Device{}, err
	}
	d.ID = domain.DeviceID(id)
	d.UserID = domain.UserID(userID)
	return d, nil
}

// Touch updates last_seen_at.
func (r *DeviceRepo) Touch(ctx context.Context, id domain.DeviceID, seenAt time.Time) error {
	const q = `
UPDATE devices SET last_seen_at = $2 WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, string(id), seenAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Revoke sets revoked_at once; revocation is terminal.
func (r *DeviceRepo) Revoke(ctx context.Context, id domain.DeviceID, revokedAt time.Time) error {
	const q = `
UPDATE devices SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, string(id), revokedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
