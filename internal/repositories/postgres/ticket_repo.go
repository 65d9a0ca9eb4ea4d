package postgres

import (
	"context"
	"errors"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/repositories"
	"github.com/jackc/pgx/v5"
)

// TicketRepo implements repositories.TicketRepository using PostgreSQL.
type TicketRepo struct{ db *DB }

// NewTicketRepo constructs a ticket repository.
func NewTicketRepo(db *DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, public_id, user_id, client_id, message, price_cents, status, asset_url, created_at, updated_at`

// FindByID selects a ticket by its internal id.
func (r *TicketRepo) FindByID(ctx context.Context, id domain.TicketID) (domain.Ticket, error) {
	const q = `
SELECT ` + ticketColumns + `
FROM tickets WHERE id=$1`
	return r.scanTicket(r.db.Pool.QueryRow(ctx, q, string(id)))
}

// FindByPublicID selects a ticket by its public capability token.
func (r *TicketRepo) FindByPublicID(ctx context.Context, publicID domain.TicketPublicID) (domain.Ticket, error) {
	const q = `
SELECT ` + ticketColumns + `
FROM tickets WHERE public_id=$1`
	return r.scanTicket(r.db.Pool.QueryRow(ctx, q, string(publicID)))
}

// Create inserts a new ticket row.
func (r *TicketRepo) Create(ctx context.Context, t domain.Ticket) error {
	const q = `
INSERT INTO tickets (id, public_id, user_id, client_id, message, price_cents, status, asset_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Pool.Exec(ctx, q,
		string(t.ID), string(t.PublicID), string(t.UserID), string(t.ClientID),
		t.Message, int64(t.PriceCents), string(t.Status), t.AssetURL, t.CreatedAt, t.UpdatedAt)
	if isUniqueViolation(err) {
		return repositories.ErrConflict
	}
	return err
}

// UpdateStatus writes status and updated_at conditioned on the row still
// holding the expected status. Zero affected rows means a concurrent
// transition won the race (or the row is gone) and maps to ErrConflict.
func (r *TicketRepo) UpdateStatus(ctx context.Context, t domain.Ticket, expected domain.TicketStatus) error {
	const q = `
UPDATE tickets
SET status = $3, updated_at = $4
WHERE id = $1 AND status = $2`
	tag, err := r.db.Pool.Exec(ctx, q, string(t.ID), string(expected), string(t.Status), t.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrConflict
	}
	return nil
}

// ListForDashboard returns the owner's tickets joined with client names,
// newest first.
func (r *TicketRepo) ListForDashboard(ctx context.Context, owner domain.UserID) ([]repositories.DashboardTicket, error) {
	const q = `
SELECT t.id, t.public_id, t.status, t.message, t.price_cents, t.asset_url, t.created_at, c.id, c.name
FROM tickets t
JOIN clients c ON c.id = t.client_id
WHERE t.user_id = $1
ORDER BY t.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repositories.DashboardTicket
	for rows.Next() {
		var (
			item       repositories.DashboardTicket
			id         string
			publicID   string
			status     string
			priceCents int64
			clientID   string
		)
		if err := rows.Scan(&id, &publicID, &status, &item.Message, &priceCents, &item.AssetURL, &item.CreatedAt, &clientID, &item.ClientName); err != nil {
			return nil, err
		}
		parsedStatus, err := domain.ParseTicketStatus(status)
		if err != nil {
			return nil, err
		}
		item.ID = domain.TicketID(id)
		item.PublicID = domain.TicketPublicID(publicID)
		item.Status = parsedStatus
		item.PriceCents = domain.Cents(priceCents)
		item.ClientID = domain.ClientID(clientID)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *TicketRepo) scanTicket(row pgx.Row) (domain.Ticket, error) {
	var (
		t          domain.Ticket
		id         string
		publicID   string
		userID     string
		clientID   string
		priceCents int64
		status     string
	)
	err := row.Scan(&id, &publicID, &userID, &clientID, &t.Message, &priceCents, &status, &t.AssetURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, repositories.ErrNotFound
		}
		return domain.Ticket{}, err
	}
	parsedStatus, err := domain.ParseTicketStatus(status)
	if err != nil {
		return domain.Ticket{}, err
	}
	t.ID = domain.TicketID(id)
	t.PublicID = domain.TicketPublicID(publicID)
	t.UserID = domain.UserID(userID)
	t.ClientID = domain.ClientID(clientID)
	t.PriceCents = domain.Cents(priceCents)
	t.Status = parsedStatus
	return t, nil
}
