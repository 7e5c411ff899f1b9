package rbac

// Role constants
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// IsPrivileged reports whether a role may use the admin resolution surface.
func IsPrivileged(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}
