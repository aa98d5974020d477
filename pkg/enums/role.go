package enums

import "fmt"

// Role is the actor role attached to every authenticated request. The core
// trusts the claim; authorization guards key off it.
type Role string

const (
	RoleUser         Role = "user"
	RoleAdmin        Role = "admin"
	RoleAgent        Role = "agent"
	RoleManager      Role = "manager"
	RoleDropshipper  Role = "dropshipper"
	RoleDriver       Role = "driver"
	RoleInvestor     Role = "investor"
	RoleReference    Role = "reference"
	RoleCommissioner Role = "commissioner"
)

var validRoles = []Role{
	RoleUser,
	RoleAdmin,
	RoleAgent,
	RoleManager,
	RoleDropshipper,
	RoleDriver,
	RoleInvestor,
	RoleReference,
	RoleCommissioner,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the role may reverse terminal order states.
func (r Role) IsPrivileged() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
