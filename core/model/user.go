package model

// Role defines the access level of a user.
type Role int

const (
	RoleRegular Role = iota
	RoleStaff
	RoleAdmin
	RoleTenantManager
)

// String returns the canonical name of the role.
func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "REGULAR_USER"
	case RoleStaff:
		return "STAFF"
	case RoleAdmin:
		return "ADMIN"
	case RoleTenantManager:
		return "TENANT_MANAGER"
	default:
		return "unknown"
	}
}

// User is an account known to the facility.
type User struct {
	ID   string
	Name string
	Role Role
}
