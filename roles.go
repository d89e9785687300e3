package session

// IsValidRole checks if the role is one of the predefined valid roles.
func IsValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleConsultant, RoleFarm, RoleFarmUser, RoleMember, RoleViewer:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a Role.
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}

// AllRoles returns the closed role set in hierarchical order, least
// privileged first.
func AllRoles() []Role {
	return []Role{
		RoleViewer,
		RoleMember,
		RoleFarmUser,
		RoleFarm,
		RoleConsultant,
		RoleAdmin,
	}
}

// RoleIsAtLeast checks if a role meets the minimum required level.
func RoleIsAtLeast(r, minRole Role) bool {
	hierarchy := map[Role]int{
		RoleViewer:     0,
		RoleMember:     1,
		RoleFarmUser:   2,
		RoleFarm:       3,
		RoleConsultant: 4,
		RoleAdmin:      5,
	}

	currentLevel, exists := hierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := hierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// RoleIn reports whether the role appears in the allowed set. An empty set
// allows every role.
func RoleIn(r Role, allowed []Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == r {
			return true
		}
	}
	return false
}
