package authz

import (
	"context"
	"sort"
	"time"
)

// fakeStore is an in-memory Store used across the package tests. It applies
// the same uniqueness rules as the SQL schema: permissions by code, roles by
// name, members by (organization, user), member roles and role permissions
// by composite key.
type fakeStore struct {
	nextID int64
	clock  time.Time

	permissions map[Permission]*PermissionRecord
	roles       map[string]*Role
	rolePerms   map[int64]map[int64]struct{}
	members     map[int64]*Member
	memberKeys  map[[2]int64]int64
	memberRoles map[int64]map[int64]struct{}

	lockAcquired int
	txErr        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		permissions: make(map[Permission]*PermissionRecord),
		roles:       make(map[string]*Role),
		rolePerms:   make(map[int64]map[int64]struct{}),
		members:     make(map[int64]*Member),
		memberKeys:  make(map[[2]int64]int64),
		memberRoles: make(map[int64]map[int64]struct{}),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	if f.txErr != nil {
		return f.txErr
	}
	return fn(ctx, f)
}

func (f *fakeStore) AcquireSeedLock(ctx context.Context) error {
	f.lockAcquired++
	return nil
}

func (f *fakeStore) UpsertPermission(ctx context.Context, def PermissionDef) (int64, error) {
	if rec, ok := f.permissions[def.Code]; ok {
		rec.DisplayName = def.DisplayName
		rec.Description = def.Description
		return rec.ID, nil
	}
	rec := &PermissionRecord{ID: f.id(), Code: def.Code, DisplayName: def.DisplayName, Description: def.Description}
	f.permissions[def.Code] = rec
	return rec.ID, nil
}

func (f *fakeStore) UpsertRole(ctx context.Context, tpl RoleTemplate) (int64, error) {
	if role, ok := f.roles[tpl.Name]; ok {
		role.DisplayName = tpl.DisplayName
		role.Description = tpl.Description
		role.UpdatedAt = f.now()
		return role.ID, nil
	}
	now := f.now()
	role := &Role{ID: f.id(), Name: tpl.Name, DisplayName: tpl.DisplayName, Description: tpl.Description, IsSystem: true, CreatedAt: now, UpdatedAt: now}
	f.roles[tpl.Name] = role
	return role.ID, nil
}

func (f *fakeStore) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	set := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		set[id] = struct{}{}
	}
	f.rolePerms[roleID] = set
	return nil
}

func (f *fakeStore) RoleByName(ctx context.Context, name string) (*Role, error) {
	role, ok := f.roles[name]
	if !ok {
		return nil, ErrRoleNotFound
	}
	copied := *role
	return &copied, nil
}

func (f *fakeStore) UpsertMember(ctx context.Context, orgID, userID int64) (int64, error) {
	key := [2]int64{orgID, userID}
	if id, ok := f.memberKeys[key]; ok {
		return id, nil
	}
	m := &Member{ID: f.id(), OrganizationID: orgID, UserID: userID, CreatedAt: f.now()}
	f.members[m.ID] = m
	f.memberKeys[key] = m.ID
	return m.ID, nil
}

func (f *fakeStore) UpsertMemberRole(ctx context.Context, memberID, roleID int64) error {
	if _, ok := f.memberRoles[memberID]; !ok {
		f.memberRoles[memberID] = make(map[int64]struct{})
	}
	f.memberRoles[memberID][roleID] = struct{}{}
	return nil
}

func (f *fakeStore) EarliestMember(ctx context.Context, orgID int64) (*Member, error) {
	var earliest *Member
	for _, m := range f.members {
		if orgID != 0 && m.OrganizationID != orgID {
			continue
		}
		if earliest == nil || m.CreatedAt.Before(earliest.CreatedAt) {
			earliest = m
		}
	}
	if earliest == nil {
		return nil, nil
	}
	copied := *earliest
	return &copied, nil
}

func (f *fakeStore) MemberHasAnyRole(ctx context.Context, orgID, userID int64) (bool, error) {
	id, ok := f.memberKeys[[2]int64{orgID, userID}]
	if !ok {
		return false, nil
	}
	return len(f.memberRoles[id]) > 0, nil
}

func (f *fakeStore) MemberHasPermission(ctx context.Context, orgID, userID int64, perm Permission) (bool, error) {
	rec, ok := f.permissions[perm]
	if !ok {
		return false, nil
	}
	memberID, ok := f.memberKeys[[2]int64{orgID, userID}]
	if !ok {
		return false, nil
	}
	for roleID := range f.memberRoles[memberID] {
		if _, ok := f.rolePerms[roleID][rec.ID]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListRoles(ctx context.Context) ([]Role, error) {
	roles := make([]Role, 0, len(f.roles))
	for _, role := range f.roles {
		roles = append(roles, *role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (f *fakeStore) ListPermissions(ctx context.Context) ([]PermissionRecord, error) {
	perms := make([]PermissionRecord, 0, len(f.permissions))
	for _, rec := range f.permissions {
		perms = append(perms, *rec)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i].Code < perms[j].Code })
	return perms, nil
}

func (f *fakeStore) MemberRoles(ctx context.Context, orgID, userID int64) ([]Role, error) {
	memberID, ok := f.memberKeys[[2]int64{orgID, userID}]
	if !ok {
		return nil, nil
	}
	var roles []Role
	for _, role := range f.roles {
		if _, held := f.memberRoles[memberID][role.ID]; held {
			roles = append(roles, *role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

// rolePermissionCodes resolves a role's bound permission codes, sorted.
func (f *fakeStore) rolePermissionCodes(name string) []string {
	role, ok := f.roles[name]
	if !ok {
		return nil
	}
	byID := make(map[int64]Permission, len(f.permissions))
	for code, rec := range f.permissions {
		byID[rec.ID] = code
	}
	var codes []string
	for permID := range f.rolePerms[role.ID] {
		codes = append(codes, string(byID[permID]))
	}
	sort.Strings(codes)
	return codes
}
