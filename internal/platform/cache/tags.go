package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Invalidator drops derived cache entries by tag after a mutation. Tags are
// plain redis keys; missing tags are not an error.
type Invalidator struct {
	client *redis.Client
	logger *slog.Logger
}

// NewInvalidator constructs an Invalidator.
func NewInvalidator(client *redis.Client, logger *slog.Logger) *Invalidator {
	return &Invalidator{client: client, logger: logger}
}

// OrgTag builds the cache tag for an organization-scoped resource listing.
func OrgTag(orgID int64, resource string) string {
	return fmt.Sprintf("meridian:org:%d:%s", orgID, resource)
}

// Invalidate removes the given tags. Failures are logged, never propagated:
// a stale cache entry must not fail the mutation that already committed.
func (i *Invalidator) Invalidate(ctx context.Context, tags ...string) {
	if i == nil || i.client == nil || len(tags) == 0 {
		return
	}
	if err := i.client.Del(ctx, tags...).Err(); err != nil {
		if i.logger != nil {
			i.logger.Warn("cache invalidate", slog.Any("error", err))
		}
	}
}
