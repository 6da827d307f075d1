package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidateRemovesTags(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, OrgTag(1, "clients"), "cached", 0).Err())
	require.NoError(t, client.Set(ctx, OrgTag(1, "products"), "cached", 0).Err())

	NewInvalidator(client, nil).Invalidate(ctx, OrgTag(1, "clients"))

	assert.False(t, mr.Exists(OrgTag(1, "clients")))
	assert.True(t, mr.Exists(OrgTag(1, "products")))
}

func TestInvalidateToleratesMissingTags(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	NewInvalidator(client, nil).Invalidate(context.Background(), OrgTag(9, "clients"))
}

func TestOrgTag(t *testing.T) {
	assert.Equal(t, "meridian:org:42:clients", OrgTag(42, "clients"))
}
