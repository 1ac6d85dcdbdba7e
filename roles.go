package authgate

import "strings"

// UserRole is the coarse role attached to an identity by the provider
type UserRole string

const (
	// RoleUnset is the role of identities with no role metadata
	RoleUnset UserRole = ""
	// RoleMember is a regular user
	RoleMember UserRole = "member"
	// RoleAdmin is an administrator, routed to the admin dashboard
	RoleAdmin UserRole = "admin"
)

// IsAdmin reports whether the role is the admin role
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// IsSet reports whether the identity carried a role at all
func (r UserRole) IsSet() bool {
	return r != RoleUnset
}

func (r UserRole) String() string {
	return string(r)
}

// ParseRole parses a raw role string. Unknown non empty roles are kept
// as is and reported as not recognized.
func ParseRole(raw string) (UserRole, bool) {
	role := UserRole(strings.TrimSpace(raw))
	switch role {
	case RoleAdmin, RoleMember:
		return role, true
	default:
		return role, false
	}
}

// RoleFromMetadata projects the "role" entry of provider metadata into
// a UserRole. Missing or non string values yield RoleUnset.
func RoleFromMetadata(metadata map[string]any) UserRole {
	if metadata == nil {
		return RoleUnset
	}

	raw, ok := metadata["role"]
	if !ok {
		return RoleUnset
	}

	str, ok := raw.(string)
	if !ok {
		return RoleUnset
	}

	role, _ := ParseRole(str)
	return role
}
