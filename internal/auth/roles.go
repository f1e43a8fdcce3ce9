package auth

// Role is a named bundle that maps to exactly one permission set.
type Role string

const (
	RoleOwner  Role = "Owner"
	RoleWriter Role = "Writer"
	RoleMember Role = "Member"
)

// Permission tokens form a closed set. A user's permission column always
// holds exactly the canonical set for their role.
const (
	PermBlogCreate     = "blog:create"
	PermBlogEdit       = "blog:edit"
	PermBlogDelete     = "blog:delete"
	PermBlogPublish    = "blog:publish"
	PermCategoryCreate = "category:create"
	PermCategoryEdit   = "category:edit"
	PermCategoryDelete = "category:delete"
	PermUserManage     = "user:manage"
	PermAdminAccess    = "admin:access"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleWriter, RoleMember:
		return true
	}
	return false
}

// PermissionsForRole resolves a role to its canonical permission set. The
// result replaces, never merges with, any previously stored set; every
// code path that writes a role must write this alongside it. Returns a
// fresh slice so callers cannot alias the canonical table.
func PermissionsForRole(role Role) []string {
	switch role {
	case RoleOwner:
		return []string{
			PermBlogCreate, PermBlogEdit, PermBlogDelete, PermBlogPublish,
			PermCategoryCreate, PermCategoryEdit, PermCategoryDelete,
			PermUserManage, PermAdminAccess,
		}
	case RoleWriter:
		return []string{
			PermBlogCreate, PermBlogEdit, PermBlogPublish,
			PermAdminAccess,
		}
	default:
		return []string{}
	}
}

// HasPermission reports whether the token is present in the given set.
func HasPermission(permissions []string, permission string) bool {
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}
