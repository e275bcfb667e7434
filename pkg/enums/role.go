package enums

import (
	"fmt"
	"strings"
)

// Role is the plant-level permissions role carried in access tokens.
type Role string

const (
	RoleAdmin              Role = "admin"
	RoleSupervisor         Role = "supervisor"
	RoleRawMaterialManager Role = "raw_material_manager"
	RoleProcessingManager  Role = "processing_manager"
	RolePackagingManager   Role = "packaging_manager"
	RoleViewer             Role = "viewer"
)

var validRoles = []Role{
	RoleAdmin,
	RoleSupervisor,
	RoleRawMaterialManager,
	RoleProcessingManager,
	RolePackagingManager,
	RoleViewer,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsManager reports whether the role may write inventory in its sections.
func (r Role) IsManager() bool {
	return strings.HasSuffix(string(r), "_manager")
}

// ParseRole converts raw strings into Role.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
