package shared

// Core platform permissions.
const (
	PermAdminList   = "admin:list"
	PermAdminCreate = "admin:create"
	PermAdminUpdate = "admin:update"
	PermAdminDelete = "admin:delete"

	PermRoleList   = "role:list"
	PermRoleCreate = "role:create"
	PermRoleUpdate = "role:update"
	PermRoleDelete = "role:delete"

	PermPermissionList   = "permission:list"
	PermPermissionCreate = "permission:create"
	PermPermissionUpdate = "permission:update"
	PermPermissionDelete = "permission:delete"

	PermMenuList   = "menu:list"
	PermMenuCreate = "menu:create"
	PermMenuUpdate = "menu:update"
	PermMenuDelete = "menu:delete"

	PermLogList   = "log:list"
	PermLogDelete = "log:delete"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermAdminList, PermAdminCreate, PermAdminUpdate, PermAdminDelete,
		PermRoleList, PermRoleCreate, PermRoleUpdate, PermRoleDelete,
		PermPermissionList, PermPermissionCreate, PermPermissionUpdate, PermPermissionDelete,
		PermMenuList, PermMenuCreate, PermMenuUpdate, PermMenuDelete,
		PermLogList, PermLogDelete,
	}
}
