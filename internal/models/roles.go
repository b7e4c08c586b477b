package models

// Role represents user roles in the system.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDriver  Role = "driver"
	RoleViewer  Role = "viewer"
)

// roleCapabilities is the fixed role → capability table. Owner is a wildcard
// handled in CapabilitiesFor/HasCapability; unknown roles resolve to an empty
// set rather than an error (fail-closed).
var roleCapabilities = map[Role][]string{
	RoleAdmin: {
		"manage_vehicles", "manage_devices", "manage_geofences", "manage_users",
		"view_telemetry", "view_events", "acknowledge_events", "resolve_events",
		"view_notifications", "manage_billing",
	},
	RoleManager: {
		"manage_vehicles", "manage_geofences",
		"view_telemetry", "view_events", "acknowledge_events", "resolve_events",
		"view_notifications",
	},
	RoleDriver: {
		"view_telemetry", "view_events", "acknowledge_events",
	},
	RoleViewer: {
		"view_telemetry", "view_events", "view_notifications",
	},
}

// IsValidRole checks if a role is valid.
func IsValidRole(role Role) bool {
	if role == RoleOwner {
		return true
	}
	_, ok := roleCapabilities[role]
	return ok
}

// CapabilitiesFor returns the capability list for a role. Owner returns the
// wildcard "*"; unknown roles return an empty list.
func CapabilitiesFor(role Role) []string {
	if role == RoleOwner {
		return []string{"*"}
	}
	caps, ok := roleCapabilities[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}

// HasCapability reports whether a role grants the given capability.
func (r Role) HasCapability(capability string) bool {
	if r == RoleOwner {
		return true
	}
	for _, c := range roleCapabilities[r] {
		if c == capability {
			return true
		}
	}
	return false
}

// Claims represents the authenticated identity attached to a request.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}
