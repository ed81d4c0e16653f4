// Package api provides the REST API surface of umd.
package api

import (
	"github.com/nephophile/umt/src/common/logs"
	"github.com/nephophile/umt/src/common/version"
	"github.com/nephophile/umt/src/umd/api/common"
	"github.com/nephophile/umt/src/umd/auth"
)

// Package-level logger, must be initialized via SetLogger
var log *logs.Logger

// versionInfo is served by the version endpoint
var versionInfo = version.New()

// SetLogger sets the logger for the api package and subpackages
func SetLogger(l *logs.Logger) {
	log = l
	auth.SetLogger(l)
	common.SetAuditLogger(l)
}

// SetVersionInfo sets the version info served by the version endpoint
func SetVersionInfo(v *version.Info) {
	if v != nil {
		versionInfo = v
	}
}

// New creates a new API instance
func New(cfg Config) *API {
	var limiter *RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = NewRateLimiter(cfg.RateLimit)
	}

	return &API{
		authHandler:   auth.NewHandler(cfg.Repo, cfg.JWTService),
		repo:          cfg.Repo,
		jwtService:    cfg.JWTService,
		database:      cfg.Database,
		backupManager: cfg.BackupManager,
		rateLimiter:   limiter,
	}
}

// Stop releases API background resources
func (a *API) Stop() {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
}

// HasBackup returns true if a backup manager is configured
func (a *API) HasBackup() bool {
	return a.backupManager != nil
}
