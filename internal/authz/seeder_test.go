package authz

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permCodes(perms []Permission) []string {
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = string(p)
	}
	sort.Strings(codes)
	return codes
}

type storeSnapshot struct {
	permissions []PermissionRecord
	roles       []Role
	bindings    map[string][]string
}

func snapshot(t *testing.T, store *fakeStore) storeSnapshot {
	t.Helper()
	perms, err := store.ListPermissions(context.Background())
	require.NoError(t, err)
	roles, err := store.ListRoles(context.Background())
	require.NoError(t, err)
	bindings := make(map[string][]string, len(roles))
	for _, role := range roles {
		bindings[role.Name] = store.rolePermissionCodes(role.Name)
	}
	return storeSnapshot{permissions: perms, roles: roles, bindings: bindings}
}

func TestSeedAllIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seeder := NewSeeder(store, nil)

	require.NoError(t, seeder.SeedAll(ctx, SeedOptions{OrganizationID: 1, AdminUserID: 7}))
	first := snapshot(t, store)

	for i := 0; i < 3; i++ {
		require.NoError(t, seeder.SeedAll(ctx, SeedOptions{OrganizationID: 1, AdminUserID: 7}))
	}
	after := snapshot(t, store)

	assert.Equal(t, first.permissions, after.permissions)
	assert.Equal(t, first.bindings, after.bindings)
	require.Len(t, after.roles, len(Templates()))
	assert.Equal(t, 4, store.lockAcquired)
}

func TestSeedAllReplacesBindingsDeclaratively(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	defs := []PermissionDef{
		{PermClientsRead, "View clients", ""},
		{PermClientsCreate, "Create clients", ""},
		{PermClientsDelete, "Delete clients", ""},
	}
	s1 := []RoleTemplate{
		{Name: RoleAdmin, DisplayName: "Administrator", Permissions: []Permission{PermClientsRead, PermClientsCreate, PermClientsDelete}},
		{Name: RoleManager, DisplayName: "Manager", Permissions: []Permission{PermClientsRead, PermClientsCreate}},
	}
	require.NoError(t, NewSeederWithDefinitions(store, defs, s1, nil).SeedAll(ctx, SeedOptions{}))
	assert.Equal(t, []string{"clients.create", "clients.read"}, store.rolePermissionCodes(RoleManager))

	// The manager template shrinks to a disjoint-ish set; re-seeding must
	// leave exactly the new set, no residue, no omissions.
	s2 := []RoleTemplate{
		{Name: RoleAdmin, DisplayName: "Administrator", Permissions: []Permission{PermClientsRead, PermClientsCreate, PermClientsDelete}},
		{Name: RoleManager, DisplayName: "Manager", Permissions: []Permission{PermClientsDelete}},
	}
	require.NoError(t, NewSeederWithDefinitions(store, defs, s2, nil).SeedAll(ctx, SeedOptions{}))
	assert.Equal(t, []string{"clients.delete"}, store.rolePermissionCodes(RoleManager))
}

func TestSeedAdminOnlyBootstrap(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seeder := NewSeeder(store, nil)

	require.NoError(t, seeder.SeedAdminOnly(ctx, 1, 42))

	perms, err := store.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, len(Catalog()), "full catalog is written even on the admin-only path")

	roles, err := store.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, RoleAdmin, roles[0].Name)
	assert.True(t, roles[0].IsSystem)

	adminTpl, _ := TemplateFor(RoleAdmin)
	assert.Equal(t, permCodes(adminTpl.Permissions), store.rolePermissionCodes(RoleAdmin))

	held, err := store.MemberRoles(ctx, 1, 42)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, RoleAdmin, held[0].Name)
}

func TestSeedAllFallsBackToEarliestMember(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seeder := NewSeeder(store, nil)

	require.NoError(t, seeder.SeedAdminOnly(ctx, 1, 42))
	// A later member must not win the fallback.
	_, err := store.UpsertMember(ctx, 1, 99)
	require.NoError(t, err)

	require.NoError(t, seeder.SeedAll(ctx, SeedOptions{}))

	roles, err := store.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(Templates()))

	held, err := store.MemberRoles(ctx, 1, 42)
	require.NoError(t, err)
	require.Len(t, held, 1, "re-grant must not duplicate the existing admin binding")
	assert.Equal(t, RoleAdmin, held[0].Name)

	later, err := store.MemberRoles(ctx, 1, 99)
	require.NoError(t, err)
	assert.Empty(t, later)

	// Seeding a single organization ignores older members elsewhere.
	_, err = store.UpsertMember(ctx, 2, 7)
	require.NoError(t, err)
	require.NoError(t, seeder.SeedAll(ctx, SeedOptions{OrganizationID: 2}))

	other, err := store.MemberRoles(ctx, 2, 7)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, RoleAdmin, other[0].Name)
}

func TestSeedAllWithoutMembersGrantsNothing(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	require.NoError(t, NewSeeder(store, nil).SeedAll(ctx, SeedOptions{}))
	assert.Empty(t, store.memberRoles)
}

func TestNewPermissionIsNotGrantedToAnyRole(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	defs := []PermissionDef{{PermClientsRead, "View clients", ""}}
	templates := []RoleTemplate{{Name: RoleAdmin, DisplayName: "Administrator", Permissions: []Permission{PermClientsRead}}}
	require.NoError(t, NewSeederWithDefinitions(store, defs, templates, nil).SeedAll(ctx, SeedOptions{OrganizationID: 1, AdminUserID: 7}))

	// The catalog gains a permission but no template is edited.
	grown := append(defs, PermissionDef{PermClientsDelete, "Delete clients", ""})
	require.NoError(t, NewSeederWithDefinitions(store, grown, templates, nil).SeedAll(ctx, SeedOptions{OrganizationID: 1, AdminUserID: 7}))

	perms, err := store.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, 2, "the new permission row exists")

	checker := NewChecker(store)
	ok, err := checker.HasPermission(ctx, 7, 1, PermClientsDelete)
	require.NoError(t, err)
	assert.False(t, ok, "nobody holds an unbound permission, admin included")

	ok, err = checker.HasPermission(ctx, 7, 1, PermClientsRead)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeedRejectsUnknownTemplatePermission(t *testing.T) {
	store := newFakeStore()
	defs := []PermissionDef{{PermClientsRead, "View clients", ""}}
	templates := []RoleTemplate{{Name: RoleAdmin, Permissions: []Permission{PermClientsDelete}}}

	err := NewSeederWithDefinitions(store, defs, templates, nil).SeedAll(context.Background(), SeedOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown permission")
}

func TestSeedUpdatesMetadataOnly(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	defs := []PermissionDef{{PermClientsRead, "View clients", "old"}}
	templates := []RoleTemplate{{Name: RoleAdmin, DisplayName: "Administrator", Permissions: []Permission{PermClientsRead}}}
	require.NoError(t, NewSeederWithDefinitions(store, defs, templates, nil).SeedAll(ctx, SeedOptions{}))

	before, err := store.ListPermissions(ctx)
	require.NoError(t, err)

	renamed := []PermissionDef{{PermClientsRead, "View client companies", "new"}}
	require.NoError(t, NewSeederWithDefinitions(store, renamed, templates, nil).SeedAll(ctx, SeedOptions{}))

	after, err := store.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID, "permission rows are upserted, never recreated")
	assert.Equal(t, "View client companies", after[0].DisplayName)
	assert.Equal(t, "new", after[0].Description)
}
