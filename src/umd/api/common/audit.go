package common

import (
	"github.com/nephophile/umt/src/common/logs"
	"github.com/gin-gonic/gin"
)

var auditLogger = logs.NewDefault()

// SetAuditLogger sets the logger used for audit events.
func SetAuditLogger(l *logs.Logger) {
	if l != nil {
		auditLogger = l
	}
}

// AuditEvent represents a security-relevant event for audit logging.
type AuditEvent struct {
	// Action identifies the operation (e.g., "auth.login", "users.block").
	Action string
	// UserID is the authenticated user's ID (zero for unauthenticated requests).
	UserID int64
	// UserEmail is the authenticated user's email.
	UserEmail string
	// Resource identifies the target (e.g., "users:3,5,9").
	Resource string
	// ClientIP is the client's IP address.
	ClientIP string
	// Detail provides optional extra context.
	Detail string
	// Success indicates whether the operation succeeded.
	Success bool
}

// AuditLog emits a structured audit log entry from a gin request context.
// Log entries include audit=true for easy filtering.
func AuditLog(c *gin.Context, event AuditEvent) {
	status := "success"
	if !event.Success {
		status = "failure"
	}

	clientIP := event.ClientIP
	if clientIP == "" && c != nil {
		clientIP = c.ClientIP()
	}

	args := []any{
		"audit", true,
		"action", event.Action,
		"status", status,
		"client_ip", clientIP,
	}

	if event.UserID != 0 {
		args = append(args, "user_id", event.UserID, "user_email", event.UserEmail)
	}
	if event.Resource != "" {
		args = append(args, "resource", event.Resource)
	}
	if event.Detail != "" {
		args = append(args, "detail", event.Detail)
	}

	auditLogger.Info("audit", args...)
}
