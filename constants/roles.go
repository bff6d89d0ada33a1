package constants

// Principal roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleGuard      = "guard"
	RoleResident   = "resident"

	// Special role marker: any authenticated principal
	RoleAny = "any"
)

// Role groups for convenience
var (
	// PassIssuerRoles may create, revoke and extend guest passes.
	PassIssuerRoles = []string{RoleResident, RoleGuard, RoleAdmin, RoleSuperAdmin}

	// PrivilegedRoles may act on passes they do not own within their residence.
	PrivilegedRoles = []string{RoleGuard, RoleAdmin, RoleSuperAdmin}

	// AdminRoles may access dashboard and management endpoints.
	AdminRoles = []string{RoleAdmin, RoleSuperAdmin}
)

// IsPrivileged reports whether the role may act on other users' passes.
func IsPrivileged(role string) bool {
	for _, r := range PrivilegedRoles {
		if r == role {
			return true
		}
	}
	return false
}
