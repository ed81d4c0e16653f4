package api

import (
	"net/http"

	"github.com/nephophile/umt/src/umd/api/common"
	"github.com/nephophile/umt/src/umd/auth"
	"github.com/gin-gonic/gin"
)

// handleCreateBackup snapshots the database and ships it to the backup backend
func (a *API) handleCreateBackup(c *gin.Context) {
	info, err := a.backupManager.Run(c.Request.Context())

	event := common.AuditEvent{
		Action:  "backup.create",
		Success: err == nil,
	}
	if actor := auth.UserFromContext(c); actor != nil {
		event.UserID = actor.ID
		event.UserEmail = actor.Email
	}
	common.AuditLog(c, event)

	if err != nil {
		if log != nil {
			log.Error("Backup failed", "error", err)
		}
		common.InternalError(c, "Backup failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Backup created successfully",
		"backup":  info,
	})
}

// handleListBackups lists stored backups, newest first
func (a *API) handleListBackups(c *gin.Context) {
	backups, err := a.backupManager.List(c.Request.Context())
	if err != nil {
		common.InternalError(c, "Failed to list backups")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backups": backups,
	})
}
