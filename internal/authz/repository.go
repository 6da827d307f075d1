package authz

import "context"

// Store is the persistence port shared by the seeder, binder and checker.
type Store interface {
	// WithTx runs fn inside a single transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error

	// Read-only queries used by the checker and the HTTP surface.
	MemberHasAnyRole(ctx context.Context, orgID, userID int64) (bool, error)
	MemberHasPermission(ctx context.Context, orgID, userID int64, perm Permission) (bool, error)
	ListRoles(ctx context.Context) ([]Role, error)
	ListPermissions(ctx context.Context) ([]PermissionRecord, error)
	MemberRoles(ctx context.Context, orgID, userID int64) ([]Role, error)
}

// TxStore exposes the write operations available inside a transaction.
type TxStore interface {
	// AcquireSeedLock serializes concurrent seeders for the lifetime of
	// the transaction.
	AcquireSeedLock(ctx context.Context) error

	UpsertPermission(ctx context.Context, def PermissionDef) (int64, error)
	UpsertRole(ctx context.Context, tpl RoleTemplate) (int64, error)
	ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error

	RoleByName(ctx context.Context, name string) (*Role, error)
	UpsertMember(ctx context.Context, orgID, userID int64) (int64, error)
	UpsertMemberRole(ctx context.Context, memberID, roleID int64) error
	// EarliestMember returns the oldest member of the organization, or
	// across all organizations when orgID is zero. Nil when none exist.
	EarliestMember(ctx context.Context, orgID int64) (*Member, error)
}
