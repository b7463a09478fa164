package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminHasEveryCapability(t *testing.T) {
	for _, cap := range allCapabilities {
		require.True(t, Can(RoleAdmin, cap), cap)
	}
}

func TestStaffCanTransferButNotExport(t *testing.T) {
	require.True(t, Can(RoleStaff, CapInventoryTransfer))
	require.False(t, Can(RoleStaff, CapInventoryExport))
	require.False(t, Can(RoleStaff, CapProjectsConfirm))
	require.False(t, Can(RoleStaff, CapWarehouseEdit))
}

func TestClientIsReadOnly(t *testing.T) {
	require.True(t, Can(RoleClient, CapProjectsView))
	require.True(t, Can(RoleClient, CapInventoryView))
	require.True(t, Can(RoleClient, CapPaymentsView))
	require.False(t, Can(RoleClient, CapInventoryTransfer))
	require.False(t, Can(RoleClient, CapPaymentsEdit))
	require.False(t, Can(RoleClient, CapCatalogView))
}

func TestUnknownRoleGetsNothing(t *testing.T) {
	require.False(t, Can("intern", CapInventoryView))
	require.False(t, Can("", CapInventoryView))
}

func TestManagerCannotManageUsers(t *testing.T) {
	require.True(t, Can(RoleManager, CapProjectsConfirm))
	require.False(t, Can(RoleManager, CapUsersManage))
}
