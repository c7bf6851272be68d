package domain

import "time"

// Role is the single-valued role attached to a user profile and, via
// the claims store, to their auth token.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// AllowedRoles is the closed set accepted by role assignment, in the
// order they are reported to callers.
var AllowedRoles = []Role{RoleAdmin, RoleStaff, RoleCustomer}

// ValidRole reports whether r is one of the assignable roles.
func ValidRole(r Role) bool {
	for _, a := range AllowedRoles {
		if r == a {
			return true
		}
	}
	return false
}

// UserProfile is the readable profile record owned by the profile
// store. The fan-out engine only reads it; role assignment merges role
// and updated_at into it.
type UserProfile struct {
	UserID    string
	Role      Role
	FullName  string
	Name      string
	Email     string
	FCMToken  string
	UpdatedAt time.Time
}

// DisplayName resolves the name used as a chat notification title:
// full name, then short name, then email.
func (u *UserProfile) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
