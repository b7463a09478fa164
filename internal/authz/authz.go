// Package authz centralizes role-to-capability checks. Handlers and
// middleware ask for a capability by name instead of comparing role
// strings inline, so the permission matrix lives in one place.
package authz

// Capabilities guarding application operations.
const (
	CapInventoryView     = "inventory.view"
	CapInventoryTransfer = "inventory.transfer"
	CapInventoryExport   = "inventory.export"
	CapWarehouseView     = "warehouse.view"
	CapWarehouseEdit     = "warehouse.edit"
	CapCatalogView       = "catalog.view"
	CapCatalogEdit       = "catalog.edit"
	CapProjectsView      = "projects.view"
	CapProjectsEdit      = "projects.edit"
	CapProjectsConfirm   = "projects.confirm"
	CapPaymentsView      = "payments.view"
	CapPaymentsEdit      = "payments.edit"
	CapUsersManage       = "users.manage"
)

// Roles known to the application.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleClient  = "client"
)

var allCapabilities = []string{
	CapInventoryView, CapInventoryTransfer, CapInventoryExport,
	CapWarehouseView, CapWarehouseEdit,
	CapCatalogView, CapCatalogEdit,
	CapProjectsView, CapProjectsEdit, CapProjectsConfirm,
	CapPaymentsView, CapPaymentsEdit,
	CapUsersManage,
}

var roleGrants = map[string][]string{
	RoleAdmin: allCapabilities,
	RoleManager: {
		CapInventoryView, CapInventoryTransfer, CapInventoryExport,
		CapWarehouseView, CapWarehouseEdit,
		CapCatalogView, CapCatalogEdit,
		CapProjectsView, CapProjectsEdit, CapProjectsConfirm,
		CapPaymentsView, CapPaymentsEdit,
	},
	RoleStaff: {
		CapInventoryView, CapInventoryTransfer,
		CapWarehouseView,
		CapCatalogView,
		CapProjectsView,
	},
	RoleClient: {
		CapInventoryView,
		CapProjectsView,
		CapPaymentsView,
	},
}

// Can reports whether the role grants the capability.
func Can(role, capability string) bool {
	for _, granted := range roleGrants[role] {
		if granted == capability {
			return true
		}
	}
	return false
}

// Subject is the authenticated principal attached to a request.
type Subject struct {
	UserID int64
	Name   string
	Role   string
}
