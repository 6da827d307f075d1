package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *fakeStore {
	t.Helper()
	store := newFakeStore()
	require.NoError(t, NewSeeder(store, nil).SeedAll(context.Background(), SeedOptions{}))
	return store
}

func TestHasAccessMonotonicUnderGrant(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	checker := NewChecker(store)
	binder := NewBinder(store)

	ok, err := checker.HasAccess(ctx, 7, 1)
	require.NoError(t, err)
	assert.False(t, ok, "no role, no access")

	require.NoError(t, binder.Grant(ctx, 1, 7, RoleViewer))

	ok, err = checker.HasAccess(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccessIsOrganizationScoped(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	checker := NewChecker(store)
	require.NoError(t, NewBinder(store).Grant(ctx, 1, 7, RoleAdmin))

	ok, err := checker.HasAccess(ctx, 7, 2)
	require.NoError(t, err)
	assert.False(t, ok, "membership in one organization grants nothing elsewhere")
}

func TestViewerHasReadButNotWrite(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	checker := NewChecker(store)
	require.NoError(t, NewBinder(store).Grant(ctx, 1, 7, RoleViewer))

	ok, err := checker.HasPermission(ctx, 7, 1, PermClientsRead)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, perm := range []Permission{PermClientsCreate, PermClientsUpdate, PermClientsDelete} {
		ok, err := checker.HasPermission(ctx, 7, 1, perm)
		require.NoError(t, err)
		assert.False(t, ok, "viewer must not hold %s", perm)
	}
}

func TestPermissionsUnionAcrossRoles(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	checker := NewChecker(store)
	binder := NewBinder(store)

	require.NoError(t, binder.Grant(ctx, 1, 7, RoleViewer))
	require.NoError(t, binder.Grant(ctx, 1, 7, RoleManager))

	ok, err := checker.HasPermission(ctx, 7, 1, PermClientsDelete)
	require.NoError(t, err)
	assert.True(t, ok, "holding a role implies the union of all held roles' permissions")
}

func TestHasPermissionRejectsUnknownCode(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	checker := NewChecker(store)
	require.NoError(t, NewBinder(store).Grant(ctx, 1, 7, RoleAdmin))

	ok, err := checker.HasPermission(ctx, 7, 1, Permission("launch.missiles"))
	require.NoError(t, err)
	assert.False(t, ok)
}
