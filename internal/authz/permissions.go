package authz

// Permission identifies an atomic capability over a resource. The set is
// closed: new permissions are added here and must then be bound to role
// templates explicitly, they are never granted automatically.
type Permission string

// Organization scope.
const (
	PermOrgView Permission = "org.view"
	PermOrgEdit Permission = "org.edit"
)

// Clients.
const (
	PermClientsRead   Permission = "clients.read"
	PermClientsCreate Permission = "clients.create"
	PermClientsUpdate Permission = "clients.update"
	PermClientsDelete Permission = "clients.delete"
)

// Suppliers.
const (
	PermSuppliersRead   Permission = "suppliers.read"
	PermSuppliersCreate Permission = "suppliers.create"
	PermSuppliersUpdate Permission = "suppliers.update"
	PermSuppliersDelete Permission = "suppliers.delete"
)

// Products.
const (
	PermProductsRead   Permission = "products.read"
	PermProductsCreate Permission = "products.create"
	PermProductsUpdate Permission = "products.update"
	PermProductsDelete Permission = "products.delete"
)

// Fiscal years.
const (
	PermFiscalYearsRead   Permission = "fiscalyears.read"
	PermFiscalYearsCreate Permission = "fiscalyears.create"
	PermFiscalYearsUpdate Permission = "fiscalyears.update"
	PermFiscalYearsClose  Permission = "fiscalyears.close"
)

// Contacts.
const (
	PermContactsRead   Permission = "contacts.read"
	PermContactsCreate Permission = "contacts.create"
	PermContactsUpdate Permission = "contacts.update"
	PermContactsDelete Permission = "contacts.delete"
)

// Invitations and membership administration.
const (
	PermInvitationsRead   Permission = "invitations.read"
	PermInvitationsCreate Permission = "invitations.create"
	PermInvitationsRevoke Permission = "invitations.revoke"

	PermMembersRead   Permission = "members.read"
	PermMembersManage Permission = "members.manage"

	PermRolesRead Permission = "roles.read"

	PermUsersRead   Permission = "users.read"
	PermUsersManage Permission = "users.manage"
)

// PermissionDef carries the display metadata seeded alongside a permission.
type PermissionDef struct {
	Code        Permission
	DisplayName string
	Description string
}

// catalog is the single ordered source of truth for the closed permission
// set. TestCatalogTotality keeps it in sync with the constants above.
var catalog = []PermissionDef{
	{PermOrgView, "View organization", "View organization settings and overview"},
	{PermOrgEdit, "Manage organization", "Update organization settings"},

	{PermClientsRead, "View clients", "View client companies"},
	{PermClientsCreate, "Create clients", "Register new client companies"},
	{PermClientsUpdate, "Edit clients", "Update client company details"},
	{PermClientsDelete, "Delete clients", "Archive or remove client companies"},

	{PermSuppliersRead, "View suppliers", "View suppliers"},
	{PermSuppliersCreate, "Create suppliers", "Register new suppliers"},
	{PermSuppliersUpdate, "Edit suppliers", "Update supplier details"},
	{PermSuppliersDelete, "Delete suppliers", "Archive or remove suppliers"},

	{PermProductsRead, "View products", "View the product catalog"},
	{PermProductsCreate, "Create products", "Add products to the catalog"},
	{PermProductsUpdate, "Edit products", "Update product details and pricing"},
	{PermProductsDelete, "Delete products", "Archive or remove products"},

	{PermFiscalYearsRead, "View fiscal years", "View fiscal year definitions"},
	{PermFiscalYearsCreate, "Create fiscal years", "Open new fiscal years"},
	{PermFiscalYearsUpdate, "Edit fiscal years", "Update fiscal year boundaries"},
	{PermFiscalYearsClose, "Close fiscal years", "Close a fiscal year for posting"},

	{PermContactsRead, "View contacts", "View contact persons"},
	{PermContactsCreate, "Create contacts", "Add contact persons"},
	{PermContactsUpdate, "Edit contacts", "Update contact persons"},
	{PermContactsDelete, "Delete contacts", "Remove contact persons"},

	{PermInvitationsRead, "View invitations", "View pending invitations"},
	{PermInvitationsCreate, "Send invitations", "Invite people into the organization"},
	{PermInvitationsRevoke, "Revoke invitations", "Revoke pending invitations"},

	{PermMembersRead, "View members", "View organization members and their roles"},
	{PermMembersManage, "Manage members", "Grant and revoke member roles"},

	{PermRolesRead, "View roles", "View roles and their permissions"},

	{PermUsersRead, "View users", "View user accounts"},
	{PermUsersManage, "Manage users", "Create and deactivate user accounts"},
}

// Catalog returns the closed permission set in declaration order.
func Catalog() []PermissionDef {
	out := make([]PermissionDef, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether p belongs to the catalog.
func (p Permission) Valid() bool {
	for _, def := range catalog {
		if def.Code == p {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (p Permission) String() string { return string(p) }
