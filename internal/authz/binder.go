package authz

import (
	"context"
	"fmt"
)

// Binder grants roles to principals within an organization. Granting an
// already-held role is a successful no-op.
type Binder struct {
	store Store
}

// NewBinder constructs a Binder.
func NewBinder(store Store) *Binder {
	return &Binder{store: store}
}

// Grant ensures a member row exists for the user in the organization and
// binds the named role to it. The role must have been seeded already;
// ErrRoleNotFound is returned otherwise.
func (b *Binder) Grant(ctx context.Context, orgID, userID int64, role string) error {
	return b.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		r, err := tx.RoleByName(ctx, role)
		if err != nil {
			return err
		}
		memberID, err := tx.UpsertMember(ctx, orgID, userID)
		if err != nil {
			return fmt.Errorf("authz: upsert member: %w", err)
		}
		return tx.UpsertMemberRole(ctx, memberID, r.ID)
	})
}
