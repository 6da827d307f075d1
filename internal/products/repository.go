package products

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

// ErrSKUTaken indicates another product in the organization uses the SKU.
var ErrSKUTaken = errors.New("products: sku already in use")

// ListFilters narrows and pages product listings.
type ListFilters struct {
	Search     string
	ActiveOnly bool
	Page       int
	PerPage    int
}

// Repository defines data access for products.
type Repository interface {
	List(ctx context.Context, orgID int64, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, orgID, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, orgID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, organization_id, sku, name, price_cents, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, orgID int64, filters ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE organization_id = $1`
	countQuery := `SELECT COUNT(*) FROM products WHERE organization_id = $1`
	args := []any{orgID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (name ILIKE $` + strconv.Itoa(len(args)) + ` OR sku ILIKE $` + strconv.Itoa(len(args)) + `)`
		query += cond
		countQuery += cond
	}
	if filters.ActiveOnly {
		cond := ` AND is_active`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY sku`
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

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.SKU, &p.Name, &p.PriceCents, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE organization_id = $1 AND id = $2`
	var p Product
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(&p.ID, &p.OrganizationID, &p.SKU, &p.Name, &p.PriceCents, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	const query = `
		INSERT INTO products (organization_id, sku, name, price_cents, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		product.OrganizationID, product.SKU, product.Name, product.PriceCents, product.IsActive, now,
	).Scan(&product.ID)
	if err != nil {
		return Product{}, mapWriteErr(err)
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	const query = `
		UPDATE products
		SET sku = $1, name = $2, price_cents = $3, is_active = $4, updated_at = $5
		WHERE organization_id = $6 AND id = $7`
	tag, err := r.db.Exec(ctx, query,
		product.SKU, product.Name, product.PriceCents, product.IsActive, time.Now(),
		product.OrganizationID, product.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE organization_id = $1 AND id = $2`, orgID, id)
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
		return ErrSKUTaken
	}
	return err
}
