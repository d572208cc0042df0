package domain

import "time"

// AuditEventType names an authentication or authorization occurrence.
type AuditEventType string

const (
	AuditLoginSucceeded  AuditEventType = "login_succeeded"
	AuditLoginFailed     AuditEventType = "login_failed"
	AuditLogout          AuditEventType = "logout"
	AuditAccessDenied    AuditEventType = "access_denied"
	AuditUserCreated     AuditEventType = "user_created"
	AuditPasswordChanged AuditEventType = "password_changed"
	AuditPasswordReset   AuditEventType = "password_reset"
	AuditRoleChanged     AuditEventType = "role_changed"
	AuditStatusToggled   AuditEventType = "status_toggled"
)

// AuditEvent is a single entry of the authentication audit trail.
// Subject is the account the event is about (user id, or the submitted
// identifier for failed logins).
type AuditEvent struct {
	Type       AuditEventType `json:"type"`
	ActorID    string         `json:"actor_id,omitempty"`
	Subject    string         `json:"subject"`
	Detail     string         `json:"detail,omitempty"`
	RemoteIP   string         `json:"remote_ip,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
