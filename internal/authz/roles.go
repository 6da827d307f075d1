package authz

// System role names.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
	RoleViewer  = "viewer"
)

// RoleTemplate declares a system role and the exact permission set it
// grants. Each template is independent: a new catalog entry extends no role
// until it is added here explicitly, admin included.
type RoleTemplate struct {
	Name        string
	DisplayName string
	Description string
	Permissions []Permission
}

// Templates returns the system role definitions in seeding order.
func Templates() []RoleTemplate {
	return []RoleTemplate{
		{
			Name:        RoleAdmin,
			DisplayName: "Administrator",
			Description: "Full access to every module",
			Permissions: allCatalogPermissions(),
		},
		{
			Name:        RoleManager,
			DisplayName: "Manager",
			Description: "Manage business data and invitations",
			Permissions: []Permission{
				PermOrgView, PermOrgEdit,
				PermClientsRead, PermClientsCreate, PermClientsUpdate, PermClientsDelete,
				PermSuppliersRead, PermSuppliersCreate, PermSuppliersUpdate, PermSuppliersDelete,
				PermProductsRead, PermProductsCreate, PermProductsUpdate, PermProductsDelete,
				PermFiscalYearsRead, PermFiscalYearsCreate, PermFiscalYearsUpdate, PermFiscalYearsClose,
				PermContactsRead, PermContactsCreate, PermContactsUpdate, PermContactsDelete,
				PermInvitationsRead, PermInvitationsCreate, PermInvitationsRevoke,
				PermMembersRead, PermRolesRead, PermUsersRead,
			},
		},
		{
			Name:        RoleUser,
			DisplayName: "User",
			Description: "Day-to-day data entry without destructive operations",
			Permissions: []Permission{
				PermOrgView,
				PermClientsRead, PermClientsCreate, PermClientsUpdate,
				PermSuppliersRead, PermSuppliersCreate, PermSuppliersUpdate,
				PermProductsRead, PermProductsCreate, PermProductsUpdate,
				PermFiscalYearsRead,
				PermContactsRead, PermContactsCreate, PermContactsUpdate,
				PermInvitationsRead,
				PermMembersRead, PermRolesRead,
			},
		},
		{
			Name:        RoleViewer,
			DisplayName: "Viewer",
			Description: "Read-only access across all resources",
			Permissions: []Permission{
				PermOrgView,
				PermClientsRead,
				PermSuppliersRead,
				PermProductsRead,
				PermFiscalYearsRead,
				PermContactsRead,
				PermInvitationsRead,
				PermMembersRead,
				PermRolesRead,
				PermUsersRead,
			},
		},
	}
}

// TemplateFor returns the template declared for the given role name.
func TemplateFor(name string) (RoleTemplate, bool) {
	for _, t := range Templates() {
		if t.Name == name {
			return t, true
		}
	}
	return RoleTemplate{}, false
}

// SystemRoleNames lists the seeded role names in seeding order.
func SystemRoleNames() []string {
	templates := Templates()
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	return names
}

func allCatalogPermissions() []Permission {
	perms := make([]Permission, len(catalog))
	for i, def := range catalog {
		perms[i] = def.Code
	}
	return perms
}
