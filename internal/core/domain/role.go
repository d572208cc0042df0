package domain

import "sort"

// RoleID identifies an entry in the role registry.
type RoleID string

// Permission is an opaque capability token.
type Permission string

const (
	RoleViewer   RoleID = "viewer"
	RoleEditorV2 RoleID = "editor_v2"
	RoleEditor   RoleID = "editor"
	RoleAdmin    RoleID = "admin"
)

const (
	PermView        Permission = "view"
	PermEdit        Permission = "edit"
	PermDelete      Permission = "delete"
	PermManageUsers Permission = "manage_users"
	PermViewAudit   Permission = "view_audit"
)

// UnknownRoleName is the display name reported for ids outside the registry.
const UnknownRoleName = "Desconocido"

// Role is a named bundle of permissions.
type Role struct {
	ID          RoleID
	Name        string
	permissions map[Permission]struct{}
}

// Has reports whether the role grants p.
func (r Role) Has(p Permission) bool {
	_, ok := r.permissions[p]
	return ok
}

// Permissions returns a sorted copy of the role's permission set.
func (r Role) Permissions() []Permission {
	out := make([]Permission, 0, len(r.permissions))
	for p := range r.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func newRole(id RoleID, name string, perms ...Permission) Role {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return Role{ID: id, Name: name, permissions: set}
}

// roleOrder fixes the listing order of the registry.
var roleOrder = []RoleID{RoleViewer, RoleEditorV2, RoleEditor, RoleAdmin}

// roles is initialised once and never written afterwards.
var roles = map[RoleID]Role{
	RoleViewer:   newRole(RoleViewer, "Visualizador", PermView),
	RoleEditorV2: newRole(RoleEditorV2, "Editor Simple", PermView, PermEdit),
	RoleEditor:   newRole(RoleEditor, "Editor Full", PermView, PermEdit, PermDelete),
	RoleAdmin:    newRole(RoleAdmin, "Administrador", PermView, PermEdit, PermDelete, PermManageUsers, PermViewAudit),
}

// LookupRole returns the registered role for id. The boolean is false when
// the id is unknown.
func LookupRole(id RoleID) (Role, bool) {
	r, ok := roles[id]
	return r, ok
}

// IsValidRole reports whether id is a registered role.
func IsValidRole(id RoleID) bool {
	_, ok := roles[id]
	return ok
}

// RoleIDs lists every registered role id, least privileged first.
func RoleIDs() []RoleID {
	out := make([]RoleID, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// Roles lists every registered role in RoleIDs order.
func Roles() []Role {
	out := make([]Role, 0, len(roleOrder))
	for _, id := range roleOrder {
		out = append(out, roles[id])
	}
	return out
}

// PermissionsOf returns the permissions granted to id; unknown ids get none.
func PermissionsOf(id RoleID) []Permission {
	r, ok := roles[id]
	if !ok {
		return []Permission{}
	}
	return r.Permissions()
}

// HasPermission reports whether role id grants p. Unknown roles grant nothing.
func HasPermission(id RoleID, p Permission) bool {
	r, ok := roles[id]
	return ok && r.Has(p)
}

// RoleName returns the display name for id, or UnknownRoleName.
func RoleName(id RoleID) string {
	if r, ok := roles[id]; ok {
		return r.Name
	}
	return UnknownRoleName
}
