// Package authz implements the organization-scoped RBAC core: a closed
// permission catalog, system role templates, an idempotent seeder, a
// membership binder and the access checker consumed by every write path.
package authz

import (
	"errors"
	"time"
)

var (
	// ErrRoleNotFound indicates the requested role has not been seeded yet.
	ErrRoleNotFound = errors.New("authz: role not found")
	// ErrSeedConflict marks a unique-constraint race between concurrent
	// seeders. Callers should retry the whole seed.
	ErrSeedConflict = errors.New("authz: concurrent seed conflict")
)

// Role is a named bundle of permissions. System roles are seeded and owned
// by the platform; they are never deleted, only their metadata is updated.
type Role struct {
	ID          int64
	Name        string
	DisplayName string
	Description string
	IsSystem    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PermissionRecord is the persisted form of a catalog entry.
type PermissionRecord struct {
	ID          int64
	Code        Permission
	DisplayName string
	Description string
}

// Member binds a user into an organization's authorization domain. Rows are
// created lazily on the first grant and never deleted by this package.
type Member struct {
	ID             int64
	OrganizationID int64
	UserID         int64
	CreatedAt      time.Time
}

// MemberRole links a member to a role. The (MemberID, RoleID) pair is
// unique, which is what makes granting idempotent.
type MemberRole struct {
	MemberID  int64
	RoleID    int64
	CreatedAt time.Time
}
