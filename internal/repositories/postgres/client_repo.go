package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/repositories"
)

// ClientRepo implements repositories.ClientRepository using PostgreSQL.
type ClientRepo struct{ db *DB }

// NewClientRepo constructs a client repository.
func NewClientRepo(db *DB) *ClientRepo { return &ClientRepo{db: db} }

// FindByID selects a client by id.
func (r *ClientRepo) FindByID(ctx context.Context, id domain.ClientID) (domain.Client, error) {
	const q = `
SELECT id, user_id, name, created_at
FROM clients WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, string(id))
	var (
		c      domain.Client
		cid    string
		userID string
	)
	if err := row.Scan(&cid, &userID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Client{}, repositories.ErrNotFound
		}
		return domain.Client{}, err
	}
	c.ID = domain.ClientID(cid)
	c.UserID = domain.UserID(userID)
	return c, nil
}

// Create inserts a new client row.
func (r *ClientRepo) Create(ctx context.Context, c domain.Client) error {
	const q = `
INSERT INTO clients (id, user_id, name, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, string(c.ID), string(c.UserID), c.Name, c.CreatedAt)
	if isUniqueViolation(err) {
		return repositories.ErrConflict
	}
	return err
}

// ListByOwner returns all clients belonging to owner, newest first.
func (r *ClientRepo) ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.Client, error) {
	const q = `
SELECT id, user_id, name, created_at
FROM clients WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		var (
			c      domain.Client
			cid    string
			userID string
		)
		if err := rows.Scan(&cid, &userID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ID = domain.ClientID(cid)
		c.UserID = domain.UserID(userID)
		out = append(out, c)
	}
	return out, rows.Err()
}

// UserRepo implements repositories.UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Ensure inserts the user row if it does not already exist.
func (r *UserRepo) Ensure(ctx context.Context, id domain.UserID, now time.Time) error {
	const q = `
INSERT INTO users (id, created_at)
VALUES ($1, $2)
ON CONFLICT (id) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, string(id), now)
	return err
}
