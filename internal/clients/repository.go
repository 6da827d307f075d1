package clients

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/shared"
)

// ErrCodeTaken indicates another client in the organization uses the code.
var ErrCodeTaken = errors.New("clients: code already in use")

// ListFilters narrows and pages client listings.
type ListFilters struct {
	Search  string
	Page    int
	PerPage int
}

// Repository defines data access for clients.
type Repository interface {
	List(ctx context.Context, orgID int64, filters ListFilters) ([]Client, int, error)
	Get(ctx context.Context, orgID, id int64) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, client Client) error
	Delete(ctx context.Context, orgID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const clientColumns = `id, organization_id, code, name, email, phone, address, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, orgID int64, filters ListFilters) ([]Client, int, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE organization_id = $1`
	countQuery := `SELECT COUNT(*) FROM clients WHERE organization_id = $1`
	args := []any{orgID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (name ILIKE $2 OR code ILIKE $2)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	if filters.PerPage > 0 {
		offset := (filters.Page - 1) * filters.PerPage
		if offset < 0 {
			offset = 0
		}
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.PerPage, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE organization_id = $1 AND id = $2`
	var c Client
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(&c.ID, &c.OrganizationID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	const query = `
		INSERT INTO clients (organization_id, code, name, email, phone, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		client.OrganizationID, client.Code, client.Name, client.Email, client.Phone, client.Address, client.IsActive, now,
	).Scan(&client.ID)
	if err != nil {
		return Client{}, mapWriteErr(err)
	}
	client.CreatedAt = now
	client.UpdatedAt = now
	return client, nil
}

func (r *repository) Update(ctx context.Context, client Client) error {
	const query = `
		UPDATE clients
		SET code = $1, name = $2, email = $3, phone = $4, address = $5, is_active = $6, updated_at = $7
		WHERE organization_id = $8 AND id = $9`
	tag, err := r.db.Exec(ctx, query,
		client.Code, client.Name, client.Email, client.Phone, client.Address, client.IsActive, time.Now(),
		client.OrganizationID, client.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrCodeTaken
	}
	return err
}
