package auth

import "sort"

const (
	ADMIN_ROLE = "admin"
	WRITE_ROLE = "schreibrecht"
	READ_ROLE  = "leserecht"
)

var RoleNameMap = map[string]bool{
	ADMIN_ROLE: true,
	WRITE_ROLE: true,
	READ_ROLE:  true,
}

type Permission string

const (
	READ_RECORDS  Permission = "records:read"
	WRITE_RECORDS Permission = "records:write"
	UPLOAD_FILES  Permission = "files:write"
	VIEW_REPORTS  Permission = "reports:read"
	MANAGE_USERS  Permission = "users:manage"
	MANAGE_SYSTEM Permission = "system:manage"
)

var rolePermissions = map[string]map[Permission]bool{
	ADMIN_ROLE: {
		READ_RECORDS:  true,
		WRITE_RECORDS: true,
		UPLOAD_FILES:  true,
		VIEW_REPORTS:  true,
		MANAGE_USERS:  true,
		MANAGE_SYSTEM: true,
	},
	WRITE_ROLE: {
		READ_RECORDS:  true,
		WRITE_RECORDS: true,
		UPLOAD_FILES:  true,
		VIEW_REPORTS:  true,
	},
	READ_ROLE: {
		READ_RECORDS: true,
		VIEW_REPORTS: true,
	},
}

// Can reports whether role grants permission. Unknown roles get nothing.
func Can(role string, permission Permission) bool {
	return rolePermissions[role][permission]
}

// Permissions lists what role grants, sorted for stable output.
func Permissions(role string) []string {
	permissions := []string{}
	for permission, granted := range rolePermissions[role] {
		if granted {
			permissions = append(permissions, string(permission))
		}
	}
	sort.Strings(permissions)

	return permissions
}
