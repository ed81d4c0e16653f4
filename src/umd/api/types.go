package api

import (
	"github.com/nephophile/umt/src/umd/api/common"
	"github.com/nephophile/umt/src/umd/auth"
	"github.com/nephophile/umt/src/umd/backup"
	"github.com/nephophile/umt/src/umd/db"
)

// ErrorResponse is an alias to common.ErrorResponse for backwards compatibility
type ErrorResponse = common.ErrorResponse

// API holds all handler instances and dependencies
type API struct {
	authHandler *auth.Handler

	// Direct dependencies for middleware and handlers
	repo          *auth.Repository
	jwtService    *auth.JWTService
	database      *db.Database
	backupManager *backup.Manager
	rateLimiter   *RateLimiter
}

// Config contains API configuration options
type Config struct {
	Repo          *auth.Repository
	JWTService    *auth.JWTService
	Database      *db.Database
	BackupManager *backup.Manager
	RateLimit     RateLimitConfig
}

// BulkUserRequest is the request body for bulk user operations
type BulkUserRequest struct {
	UserIDs []int64 `json:"userIds" binding:"required,min=1"`
}
