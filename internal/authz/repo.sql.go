package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/platform/db"
)

// seedLockID keys the advisory transaction lock serializing seed runs.
const seedLockID int64 = 740031

// Repository provides PostgreSQL backed persistence for the authz tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes fn inside one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repoTx{tx: tx})
	})
}

// MemberHasAnyRole reports whether the user holds at least one role in the
// organization.
func (r *Repository) MemberHasAnyRole(ctx context.Context, orgID, userID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM members m
			JOIN member_roles mr ON mr.member_id = m.id
			WHERE m.organization_id = $1 AND m.user_id = $2
		)`
	var ok bool
	if err := r.pool.QueryRow(ctx, query, orgID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// MemberHasPermission reports whether the user's roles in the organization
// grant the given permission.
func (r *Repository) MemberHasPermission(ctx context.Context, orgID, userID int64, perm Permission) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM members m
			JOIN member_roles mr ON mr.member_id = m.id
			JOIN role_permissions rp ON rp.role_id = mr.role_id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE m.organization_id = $1 AND m.user_id = $2 AND p.code = $3
		)`
	var ok bool
	if err := r.pool.QueryRow(ctx, query, orgID, userID, string(perm)).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListRoles returns all roles ordered by name.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, display_name, description, is_system, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListPermissions returns the persisted catalog ordered by code.
func (r *Repository) ListPermissions(ctx context.Context) ([]PermissionRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, display_name, description FROM permissions ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []PermissionRecord
	for rows.Next() {
		var rec PermissionRecord
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.DisplayName, &rec.Description); err != nil {
			return nil, err
		}
		perms = append(perms, rec)
	}
	return perms, rows.Err()
}

// MemberRoles returns the roles the user holds in the organization.
func (r *Repository) MemberRoles(ctx context.Context, orgID, userID int64) ([]Role, error) {
	const query = `
		SELECT r.id, r.name, r.display_name, r.description, r.is_system, r.created_at, r.updated_at
		FROM members m
		JOIN member_roles mr ON mr.member_id = m.id
		JOIN roles r ON r.id = mr.role_id
		WHERE m.organization_id = $1 AND m.user_id = $2
		ORDER BY r.name`
	rows, err := r.pool.Query(ctx, query, orgID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

type repoTx struct {
	tx pgx.Tx
}

func (t *repoTx) AcquireSeedLock(ctx context.Context) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockID)
	return err
}

func (t *repoTx) UpsertPermission(ctx context.Context, def PermissionDef) (int64, error) {
	const query = `
		INSERT INTO permissions (code, display_name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE
		SET display_name = EXCLUDED.display_name, description = EXCLUDED.description
		RETURNING id`
	var id int64
	if err := t.tx.QueryRow(ctx, query, string(def.Code), def.DisplayName, def.Description).Scan(&id); err != nil {
		return 0, mapSeedErr(err)
	}
	return id, nil
}

func (t *repoTx) UpsertRole(ctx context.Context, tpl RoleTemplate) (int64, error) {
	// is_system is fixed at insert time; re-seeding only refreshes metadata.
	const query = `
		INSERT INTO roles (name, display_name, description, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE
		SET display_name = EXCLUDED.display_name, description = EXCLUDED.description, updated_at = NOW()
		RETURNING id`
	var id int64
	if err := t.tx.QueryRow(ctx, query, tpl.Name, tpl.DisplayName, tpl.Description).Scan(&id); err != nil {
		return 0, mapSeedErr(err)
	}
	return id, nil
}

func (t *repoTx) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return err
	}
	if len(permissionIDs) == 0 {
		return nil
	}
	const query = `
		INSERT INTO role_permissions (role_id, permission_id, created_at)
		SELECT $1, unnest($2::bigint[]), NOW()`
	if _, err := t.tx.Exec(ctx, query, roleID, permissionIDs); err != nil {
		return mapSeedErr(err)
	}
	return nil
}

func (t *repoTx) RoleByName(ctx context.Context, name string) (*Role, error) {
	const query = `SELECT id, name, display_name, description, is_system, created_at, updated_at FROM roles WHERE name = $1`
	var role Role
	err := t.tx.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (t *repoTx) UpsertMember(ctx context.Context, orgID, userID int64) (int64, error) {
	// The conflict update is a no-op write so RETURNING yields the
	// existing row's id.
	const query = `
		INSERT INTO members (organization_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (organization_id, user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`
	var id int64
	if err := t.tx.QueryRow(ctx, query, orgID, userID).Scan(&id); err != nil {
		return 0, mapSeedErr(err)
	}
	return id, nil
}

func (t *repoTx) UpsertMemberRole(ctx context.Context, memberID, roleID int64) error {
	const query = `
		INSERT INTO member_roles (member_id, role_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (member_id, role_id) DO NOTHING`
	_, err := t.tx.Exec(ctx, query, memberID, roleID)
	return err
}

func (t *repoTx) EarliestMember(ctx context.Context, orgID int64) (*Member, error) {
	const query = `
		SELECT id, organization_id, user_id, created_at
		FROM members
		WHERE organization_id = $1 OR $1 = 0
		ORDER BY created_at, id
		LIMIT 1`
	var m Member
	err := t.tx.QueryRow(ctx, query, orgID).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// mapSeedErr converts unique-constraint races between concurrent seeders
// into the retryable sentinel.
func mapSeedErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrSeedConflict, pgErr.ConstraintName)
	}
	return err
}
