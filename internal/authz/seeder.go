package authz

import (
	"context"
	"fmt"
	"log/slog"
)

// Seeder reconciles the persisted permission catalog and system roles with
// their declared templates. Both entry points are idempotent and run inside
// a single transaction serialized by an advisory lock, so a crashed or
// concurrent seed can never leave a role holding a partial permission set.
type Seeder struct {
	store     Store
	catalog   []PermissionDef
	templates []RoleTemplate
	logger    *slog.Logger
}

// SeedOptions selects the principal granted the administrator role by
// SeedAll. When zero, the earliest-created member is used as fallback.
type SeedOptions struct {
	OrganizationID int64
	AdminUserID    int64
}

// NewSeeder constructs a Seeder over the compiled-in catalog and templates.
func NewSeeder(store Store, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:     store,
		catalog:   Catalog(),
		templates: Templates(),
		logger:    logger,
	}
}

// NewSeederWithDefinitions constructs a Seeder over explicit definitions.
// Production wiring uses NewSeeder; this form exists so reconciliation can
// be exercised against evolving catalogs.
func NewSeederWithDefinitions(store Store, catalog []PermissionDef, templates []RoleTemplate, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, catalog: catalog, templates: templates, logger: logger}
}

// SeedAll upserts the whole catalog and every system role, fully replaces
// each role's permission bindings with its declared template, and grants
// the administrator role to the principal in opts or, failing that, to the
// earliest-created member. Safe to re-run any number of times.
func (s *Seeder) SeedAll(ctx context.Context, opts SeedOptions) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := tx.AcquireSeedLock(ctx); err != nil {
			return fmt.Errorf("authz: acquire seed lock: %w", err)
		}

		permIDs, err := s.seedPermissions(ctx, tx)
		if err != nil {
			return err
		}

		var adminRoleID int64
		for _, tpl := range s.templates {
			roleID, err := s.seedRole(ctx, tx, tpl, permIDs)
			if err != nil {
				return err
			}
			if tpl.Name == RoleAdmin {
				adminRoleID = roleID
			}
		}

		return s.grantAdmin(ctx, tx, adminRoleID, opts)
	})
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("authz seed complete",
			slog.Int("permissions", len(s.catalog)),
			slog.Int("roles", len(s.templates)))
	}
	return nil
}

// SeedAdminOnly is the bootstrap fast path used at first-organization
// creation: it writes the full permission catalog (the catalog is
// process-wide), upserts only the administrator role, replaces its bindings
// and grants it to the given principal.
func (s *Seeder) SeedAdminOnly(ctx context.Context, orgID, userID int64) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := tx.AcquireSeedLock(ctx); err != nil {
			return fmt.Errorf("authz: acquire seed lock: %w", err)
		}

		permIDs, err := s.seedPermissions(ctx, tx)
		if err != nil {
			return err
		}

		tpl, ok := s.templateFor(RoleAdmin)
		if !ok {
			return fmt.Errorf("authz: no template declared for role %q", RoleAdmin)
		}
		roleID, err := s.seedRole(ctx, tx, tpl, permIDs)
		if err != nil {
			return err
		}

		return s.grantAdmin(ctx, tx, roleID, SeedOptions{OrganizationID: orgID, AdminUserID: userID})
	})
}

func (s *Seeder) seedPermissions(ctx context.Context, tx TxStore) (map[Permission]int64, error) {
	ids := make(map[Permission]int64, len(s.catalog))
	for _, def := range s.catalog {
		id, err := tx.UpsertPermission(ctx, def)
		if err != nil {
			return nil, fmt.Errorf("authz: upsert permission %s: %w", def.Code, err)
		}
		ids[def.Code] = id
	}
	return ids, nil
}

func (s *Seeder) seedRole(ctx context.Context, tx TxStore, tpl RoleTemplate, permIDs map[Permission]int64) (int64, error) {
	roleID, err := tx.UpsertRole(ctx, tpl)
	if err != nil {
		return 0, fmt.Errorf("authz: upsert role %s: %w", tpl.Name, err)
	}

	bound := make([]int64, 0, len(tpl.Permissions))
	for _, perm := range tpl.Permissions {
		id, ok := permIDs[perm]
		if !ok {
			return 0, fmt.Errorf("authz: role %s declares unknown permission %s", tpl.Name, perm)
		}
		bound = append(bound, id)
	}

	if err := tx.ReplaceRolePermissions(ctx, roleID, bound); err != nil {
		return 0, fmt.Errorf("authz: replace permissions for role %s: %w", tpl.Name, err)
	}
	return roleID, nil
}

func (s *Seeder) grantAdmin(ctx context.Context, tx TxStore, adminRoleID int64, opts SeedOptions) error {
	if opts.AdminUserID != 0 && opts.OrganizationID != 0 {
		memberID, err := tx.UpsertMember(ctx, opts.OrganizationID, opts.AdminUserID)
		if err != nil {
			return fmt.Errorf("authz: upsert member: %w", err)
		}
		return tx.UpsertMemberRole(ctx, memberID, adminRoleID)
	}

	member, err := tx.EarliestMember(ctx, opts.OrganizationID)
	if err != nil {
		return fmt.Errorf("authz: find earliest member: %w", err)
	}
	if member == nil {
		// Nothing to grant yet; the first organization bootstrap will
		// call SeedAdminOnly with an explicit principal.
		return nil
	}
	return tx.UpsertMemberRole(ctx, member.ID, adminRoleID)
}

func (s *Seeder) templateFor(name string) (RoleTemplate, bool) {
	for _, tpl := range s.templates {
		if tpl.Name == name {
			return tpl, true
		}
	}
	return RoleTemplate{}, false
}
