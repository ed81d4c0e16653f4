package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAuditLog_DoesNotPanic(t *testing.T) {
	// Ensure AuditLog doesn't panic with a valid gin context
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	c.Request.RemoteAddr = "192.168.1.1:12345"

	// Should not panic
	AuditLog(c, AuditEvent{
		Action:    "auth.login",
		UserID:    123,
		UserEmail: "test@example.com",
		Resource:  "auth:login",
		Success:   true,
	})

	AuditLog(c, AuditEvent{
		Action:  "auth.login",
		Detail:  "invalid password",
		Success: false,
	})
}

func TestAuditLog_NilContext(t *testing.T) {
	// Should not panic with nil context when ClientIP is provided
	AuditLog(nil, AuditEvent{
		Action:   "auth.login",
		ClientIP: "10.0.0.1",
		Success:  true,
	})
}

func TestAuditEvent_Fields(t *testing.T) {
	event := AuditEvent{
		Action:    "users.block",
		UserID:    456,
		UserEmail: "admin@example.com",
		Resource:  "users:3,5,9",
		ClientIP:  "10.0.0.1",
		Detail:    "test detail",
		Success:   true,
	}

	if event.Action != "users.block" {
		t.Fatalf("Action = %q, want %q", event.Action, "users.block")
	}
	if event.UserID != 456 {
		t.Fatalf("UserID = %d, want %d", event.UserID, 456)
	}
	if !event.Success {
		t.Fatal("Success should be true")
	}
}
