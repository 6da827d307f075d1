package invitations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/shared"
)

// Repository defines data access for invitations.
type Repository interface {
	List(ctx context.Context, orgID int64) ([]Invitation, error)
	Create(ctx context.Context, inv Invitation) (Invitation, error)
	GetPendingByToken(ctx context.Context, token string) (Invitation, error)
	MarkAccepted(ctx context.Context, id int64, at time.Time) error
	MarkRevoked(ctx context.Context, orgID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const invColumns = `id, organization_id, email, role, token, status, invited_by, expires_at, accepted_at, created_at`

func (r *repository) List(ctx context.Context, orgID int64) ([]Invitation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+invColumns+` FROM invitations WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invitation
	for rows.Next() {
		var inv Invitation
		if err := rows.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.Token, &inv.Status, &inv.InvitedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, inv Invitation) (Invitation, error) {
	const query = `
		INSERT INTO invitations (organization_id, email, role, token, status, invited_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		inv.OrganizationID, inv.Email, inv.Role, inv.Token, inv.Status, inv.InvitedBy, inv.ExpiresAt, now,
	).Scan(&inv.ID)
	if err != nil {
		return Invitation{}, err
	}
	inv.CreatedAt = now
	return inv, nil
}

func (r *repository) GetPendingByToken(ctx context.Context, token string) (Invitation, error) {
	const query = `SELECT ` + invColumns + ` FROM invitations WHERE token = $1 AND status = 'pending'`
	var inv Invitation
	err := r.db.QueryRow(ctx, query, token).
		Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.Token, &inv.Status, &inv.InvitedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invitation{}, ErrInvalidToken
	}
	return inv, err
}

// MarkAccepted flips a pending invitation exactly once.
func (r *repository) MarkAccepted(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invitations SET status = 'accepted', accepted_at = $1 WHERE id = $2 AND status = 'pending'`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidToken
	}
	return nil
}

func (r *repository) MarkRevoked(ctx context.Context, orgID, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invitations SET status = 'revoked' WHERE organization_id = $1 AND id = $2 AND status = 'pending'`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
