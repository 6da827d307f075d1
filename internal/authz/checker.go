package authz

import "context"

// Checker answers the access questions every mutating code path asks before
// touching data. It is a pure query over seeded and granted state: denial
// is a boolean result, never an error, and no call mutates anything.
type Checker struct {
	store Store
}

// NewChecker constructs a Checker.
func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// HasAccess reports whether the user holds at least one role in the
// organization. This is the coarse gate used by most handlers.
func (c *Checker) HasAccess(ctx context.Context, userID, orgID int64) (bool, error) {
	return c.store.MemberHasAnyRole(ctx, orgID, userID)
}

// HasPermission reports whether the union of the user's roles in the
// organization grants the specific permission.
func (c *Checker) HasPermission(ctx context.Context, userID, orgID int64, perm Permission) (bool, error) {
	if !perm.Valid() {
		return false, nil
	}
	return c.store.MemberHasPermission(ctx, orgID, userID, perm)
}
