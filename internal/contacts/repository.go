package contacts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/shared"
)

// ErrClientMissing indicates the referenced client does not exist in the
// organization.
var ErrClientMissing = errors.New("contacts: client not found in organization")

// Repository defines data access for contacts.
type Repository interface {
	ListByClient(ctx context.Context, orgID, clientID int64) ([]Contact, error)
	Get(ctx context.Context, orgID, id int64) (Contact, error)
	Create(ctx context.Context, contact Contact) (Contact, error)
	Update(ctx context.Context, contact Contact) error
	Delete(ctx context.Context, orgID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const contactColumns = `id, organization_id, client_id, name, email, phone, role, created_at, updated_at`

func (r *repository) ListByClient(ctx context.Context, orgID, clientID int64) ([]Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE organization_id = $1 AND client_id = $2 ORDER BY name`
	rows, err := r.db.Query(ctx, query, orgID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.ClientID, &c.Name, &c.Email, &c.Phone, &c.Role, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE organization_id = $1 AND id = $2`
	var c Contact
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(&c.ID, &c.OrganizationID, &c.ClientID, &c.Name, &c.Email, &c.Phone, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, shared.ErrNotFound
	}
	return c, err
}

// Create requires the client to belong to the same organization. The
// subselect keeps the check and the insert in one statement.
func (r *repository) Create(ctx context.Context, contact Contact) (Contact, error) {
	const query = `
		INSERT INTO contacts (organization_id, client_id, name, email, phone, role, created_at, updated_at)
		SELECT $1, c.id, $3, $4, $5, $6, $7, $7
		FROM clients c
		WHERE c.organization_id = $1 AND c.id = $2
		RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		contact.OrganizationID, contact.ClientID, contact.Name, contact.Email, contact.Phone, contact.Role, now,
	).Scan(&contact.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrClientMissing
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Contact{}, ErrClientMissing
		}
		return Contact{}, err
	}
	contact.CreatedAt = now
	contact.UpdatedAt = now
	return contact, nil
}

func (r *repository) Update(ctx context.Context, contact Contact) error {
	const query = `
		UPDATE contacts
		SET name = $1, email = $2, phone = $3, role = $4, updated_at = $5
		WHERE organization_id = $6 AND id = $7`
	tag, err := r.db.Exec(ctx, query,
		contact.Name, contact.Email, contact.Phone, contact.Role, time.Now(),
		contact.OrganizationID, contact.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
