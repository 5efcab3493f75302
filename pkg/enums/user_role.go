package enums

import "fmt"

// UserRole is the coarse role carried in the access token. Fine-grained
// permission policy lives with the identity provider; the API only gates
// route groups on these values.
type UserRole string

const (
	UserRoleMember    UserRole = "member"
	UserRoleLibrarian UserRole = "librarian"
	UserRoleAdmin     UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleMember,
	UserRoleLibrarian,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
