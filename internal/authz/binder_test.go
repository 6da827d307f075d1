package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	binder := NewBinder(store)

	require.NoError(t, binder.Grant(ctx, 1, 7, RoleUser))
	require.NoError(t, binder.Grant(ctx, 1, 7, RoleUser))

	held, err := store.MemberRoles(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, RoleUser, held[0].Name)
	assert.Len(t, store.members, 1, "the member row is upserted, not duplicated")
}

func TestGrantUnknownRole(t *testing.T) {
	store := seededStore(t)
	err := NewBinder(store).Grant(context.Background(), 1, 7, "superuser")
	assert.True(t, errors.Is(err, ErrRoleNotFound))
}

func TestGrantRequiresSeededRoles(t *testing.T) {
	store := newFakeStore()
	err := NewBinder(store).Grant(context.Background(), 1, 7, RoleAdmin)
	assert.True(t, errors.Is(err, ErrRoleNotFound))
}
