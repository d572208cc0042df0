package domain

// DenialReason classifies why a guarded operation was refused.
type DenialReason string

const (
	DenialUnauthenticated   DenialReason = "unauthenticated"
	DenialMissingPermission DenialReason = "missing_permission"
	DenialMissingRole       DenialReason = "missing_role"
)

// Denial is the structured signal emitted when a guard refuses a request.
// Detail names the missing permission, or the required role's display name.
type Denial struct {
	Reason DenialReason `json:"reason"`
	Detail string       `json:"detail"`
}

// AuthorizePermission returns nil when u's role grants p, otherwise the
// denial to report. A nil principal is denied as unauthenticated.
func AuthorizePermission(u *User, p Permission) *Denial {
	if u == nil {
		return &Denial{Reason: DenialUnauthenticated}
	}
	if !u.HasPermission(p) {
		return &Denial{Reason: DenialMissingPermission, Detail: string(p)}
	}
	return nil
}

// AuthorizeRole returns nil when u holds role or is an admin. Admin passes
// every role check regardless of its permission set.
func AuthorizeRole(u *User, role RoleID) *Denial {
	if u == nil {
		return &Denial{Reason: DenialUnauthenticated}
	}
	if u.Role == role || u.Role == RoleAdmin {
		return nil
	}
	return &Denial{Reason: DenialMissingRole, Detail: RoleName(role)}
}
