package user

import "slices"

type Permission string

const (
	// Payroll
	PermissionPayrollView    Permission = "payroll.view"
	PermissionPayrollCompute Permission = "payroll.compute"
	PermissionPayoutManage   Permission = "payout.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionPayrollView,
		PermissionPayrollCompute,
		PermissionPayoutManage,
	},
	RoleAgencyOwner: {
		PermissionPayrollView,
		PermissionPayrollCompute,
		PermissionPayoutManage,
	},
	RoleAdmin: {
		PermissionPayrollView,
		PermissionPayrollCompute,
		PermissionPayoutManage,
	},
	RoleInvestor: {
		// Investors see payroll but cannot change it
		PermissionPayrollView,
	},
	RoleCreator: {},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	return slices.Contains(permissions, permission)
}
