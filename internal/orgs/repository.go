package orgs

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/shared"
)

// ErrSlugTaken indicates another organization already claimed the slug.
var ErrSlugTaken = errors.New("orgs: slug already taken")

// Repository defines data access for organizations.
type Repository interface {
	Create(ctx context.Context, org Organization) (Organization, error)
	Get(ctx context.Context, id int64) (Organization, error)
	ListForUser(ctx context.Context, userID int64) ([]Organization, error)
	CountResource(ctx context.Context, orgID int64, resource string) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, org Organization) (Organization, error) {
	const query = `
		INSERT INTO organizations (name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, org.Name, org.Slug, now).Scan(&org.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Organization{}, ErrSlugTaken
		}
		return Organization{}, err
	}
	org.CreatedAt = now
	org.UpdatedAt = now
	return org, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Organization, error) {
	const query = `SELECT id, name, slug, created_at, updated_at FROM organizations WHERE id = $1`
	var org Organization
	err := r.db.QueryRow(ctx, query, id).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, shared.ErrNotFound
	}
	return org, err
}

func (r *repository) ListForUser(ctx context.Context, userID int64) ([]Organization, error) {
	const query = `
		SELECT o.id, o.name, o.slug, o.created_at, o.updated_at
		FROM organizations o
		JOIN members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.name`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

// CountResource counts rows of an org-scoped table. The resource name is
// mapped to a fixed query, never interpolated.
func (r *repository) CountResource(ctx context.Context, orgID int64, resource string) (int64, error) {
	var query string
	switch resource {
	case "clients":
		query = `SELECT COUNT(*) FROM clients WHERE organization_id = $1`
	case "suppliers":
		query = `SELECT COUNT(*) FROM suppliers WHERE organization_id = $1`
	case "products":
		query = `SELECT COUNT(*) FROM products WHERE organization_id = $1`
	case "members":
		query = `SELECT COUNT(*) FROM members WHERE organization_id = $1`
	default:
		return 0, errors.New("orgs: unknown resource " + resource)
	}
	var n int64
	err := r.db.QueryRow(ctx, query, orgID).Scan(&n)
	return n, err
}
