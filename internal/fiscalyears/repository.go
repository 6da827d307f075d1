package fiscalyears

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/shared"
)

// Repository defines data access for fiscal years.
type Repository interface {
	List(ctx context.Context, orgID int64) ([]FiscalYear, error)
	Get(ctx context.Context, orgID, id int64) (FiscalYear, error)
	Create(ctx context.Context, fy FiscalYear) (FiscalYear, error)
	Update(ctx context.Context, fy FiscalYear) error
	SetClosed(ctx context.Context, orgID, id int64, closed bool) error
	AnyOverlapping(ctx context.Context, orgID int64, start, end time.Time, excludeID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const fyColumns = `id, organization_id, label, start_date, end_date, is_closed, created_at, updated_at`

func (r *repository) List(ctx context.Context, orgID int64) ([]FiscalYear, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fyColumns+` FROM fiscal_years WHERE organization_id = $1 ORDER BY start_date`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FiscalYear
	for rows.Next() {
		var fy FiscalYear
		if err := rows.Scan(&fy.ID, &fy.OrganizationID, &fy.Label, &fy.StartDate, &fy.EndDate, &fy.IsClosed, &fy.CreatedAt, &fy.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, fy)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (FiscalYear, error) {
	var fy FiscalYear
	err := r.db.QueryRow(ctx, `SELECT `+fyColumns+` FROM fiscal_years WHERE organization_id = $1 AND id = $2`, orgID, id).
		Scan(&fy.ID, &fy.OrganizationID, &fy.Label, &fy.StartDate, &fy.EndDate, &fy.IsClosed, &fy.CreatedAt, &fy.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FiscalYear{}, shared.ErrNotFound
	}
	return fy, err
}

func (r *repository) Create(ctx context.Context, fy FiscalYear) (FiscalYear, error) {
	const query = `
		INSERT INTO fiscal_years (organization_id, label, start_date, end_date, is_closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $5)
		RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, fy.OrganizationID, fy.Label, fy.StartDate, fy.EndDate, now).Scan(&fy.ID)
	if err != nil {
		return FiscalYear{}, err
	}
	fy.CreatedAt = now
	fy.UpdatedAt = now
	return fy, nil
}

func (r *repository) Update(ctx context.Context, fy FiscalYear) error {
	const query = `
		UPDATE fiscal_years
		SET label = $1, start_date = $2, end_date = $3, updated_at = $4
		WHERE organization_id = $5 AND id = $6 AND NOT is_closed`
	tag, err := r.db.Exec(ctx, query, fy.Label, fy.StartDate, fy.EndDate, time.Now(), fy.OrganizationID, fy.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetClosed(ctx context.Context, orgID, id int64, closed bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE fiscal_years SET is_closed = $1, updated_at = $2 WHERE organization_id = $3 AND id = $4`,
		closed, time.Now(), orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AnyOverlapping(ctx context.Context, orgID int64, start, end time.Time, excludeID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM fiscal_years
			WHERE organization_id = $1
			  AND id <> $2
			  AND start_date <= $4
			  AND end_date >= $3
		)`
	var exists bool
	err := r.db.QueryRow(ctx, query, orgID, excludeID, start, end).Scan(&exists)
	return exists, err
}
