package handler

import (
	"time"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

type loginRequest struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password"   form:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     form:"new_password"     validate:"required,min=6,max=72"`
}

// Role is left unvalidated here so that an unknown role reaches the service
// and comes back listing the valid ones.
type createUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=50"`
	Email    string `json:"email"    form:"email"    validate:"required,email,max=100"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     form:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role" form:"role" validate:"required"`
}

type setPasswordRequest struct {
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user"`
}

type profileResponse struct {
	User        *domain.User        `json:"user"`
	RoleName    string              `json:"role_name"`
	Permissions []domain.Permission `json:"permissions"`
}

type createdUserResponse struct {
	ID   string       `json:"id"`
	User *domain.User `json:"user,omitempty"`
}

type roleResponse struct {
	ID          domain.RoleID       `json:"id"`
	Name        string              `json:"name"`
	Permissions []domain.Permission `json:"permissions"`
}

type auditEventResponse struct {
	Type       domain.AuditEventType `json:"type"`
	ActorID    string                `json:"actor_id,omitempty"`
	Subject    string                `json:"subject"`
	Detail     string                `json:"detail,omitempty"`
	RemoteIP   string                `json:"remote_ip,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the envelope written by the HTTP error handler.
type errorResponse struct {
	Error      string   `json:"error"`
	ValidRoles []string `json:"valid_roles,omitempty"`
}

func newProfileResponse(u *domain.User) profileResponse {
	return profileResponse{
		User:        u,
		RoleName:    u.RoleName(),
		Permissions: domain.PermissionsOf(u.Role),
	}
}

func toAuditEventResponse(e *domain.AuditEvent) auditEventResponse {
	return auditEventResponse{
		Type:       e.Type,
		ActorID:    e.ActorID,
		Subject:    e.Subject,
		Detail:     e.Detail,
		RemoteIP:   e.RemoteIP,
		OccurredAt: e.OccurredAt,
	}
}
