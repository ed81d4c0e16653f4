package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nephophile/umt/src/common/errors"
	"github.com/nephophile/umt/src/umd/api/common"
	"github.com/nephophile/umt/src/umd/auth"
	"github.com/gin-gonic/gin"
)

// handleListUsers returns all users, most recent login first
func (a *API) handleListUsers(c *gin.Context) {
	users, err := a.repo.ListUsers()
	if err != nil {
		c.JSON(errors.GetHTTPStatus(err), errors.NewResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":   users,
		"message": fmt.Sprintf("%d user(s) found", len(users)),
	})
}

// resourceForIDs formats a bulk target for audit logging
func resourceForIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "users:" + strings.Join(parts, ",")
}

// auditBulk logs a bulk user operation performed by the authenticated actor
func auditBulk(c *gin.Context, action string, ids []int64, success bool) {
	event := common.AuditEvent{
		Action:   action,
		Resource: resourceForIDs(ids),
		Success:  success,
	}
	if actor := auth.UserFromContext(c); actor != nil {
		event.UserID = actor.ID
		event.UserEmail = actor.Email
	}
	common.AuditLog(c, event)
}

// handleBlockUsers blocks the given users. IDs that match no user are
// skipped, the response reflects only the rows actually updated.
func (a *API) handleBlockUsers(c *gin.Context) {
	var req BulkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrInvalidJSON.ToResponse())
		return
	}

	blocked, err := a.repo.BlockUsers(req.UserIDs)
	if err != nil {
		auditBulk(c, "users.block", req.UserIDs, false)
		c.JSON(errors.GetHTTPStatus(err), errors.NewResponse(err))
		return
	}

	auditBulk(c, "users.block", req.UserIDs, true)
	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("%d user(s) blocked successfully", len(blocked)),
		"blockedUsers": blocked,
	})
}

// handleUnblockUsers unblocks the given users
func (a *API) handleUnblockUsers(c *gin.Context) {
	var req BulkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrInvalidJSON.ToResponse())
		return
	}

	unblocked, err := a.repo.UnblockUsers(req.UserIDs)
	if err != nil {
		auditBulk(c, "users.unblock", req.UserIDs, false)
		c.JSON(errors.GetHTTPStatus(err), errors.NewResponse(err))
		return
	}

	auditBulk(c, "users.unblock", req.UserIDs, true)
	c.JSON(http.StatusOK, gin.H{
		"message":        fmt.Sprintf("%d user(s) unblocked successfully", len(unblocked)),
		"unblockedUsers": unblocked,
	})
}

// handleDeleteUsers deletes the given users. Deleting your own account is
// allowed, the guard rejects the very next request on that session.
func (a *API) handleDeleteUsers(c *gin.Context) {
	var req BulkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrInvalidJSON.ToResponse())
		return
	}

	deleted, err := a.repo.DeleteUsers(req.UserIDs)
	if err != nil {
		auditBulk(c, "users.delete", req.UserIDs, false)
		c.JSON(errors.GetHTTPStatus(err), errors.NewResponse(err))
		return
	}

	auditBulk(c, "users.delete", req.UserIDs, true)
	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("%d user(s) deleted successfully", len(deleted)),
		"deletedUsers": deleted,
	})
}
