package api

import "github.com/gin-gonic/gin"

// RegisterRoutes configures all API routes on the given router
func (a *API) RegisterRoutes(router *gin.Engine) {
	// Root endpoint - API discovery
	router.GET("/", a.handleRoot)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", a.handleHealth)
		apiGroup.GET("/version", a.handleVersion)

		// Auth routes - open, but rate limited to slow down guessing
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(a.rateLimitAuth())
		{
			authGroup.POST("/register", a.auditAuth("auth.register", a.authHandler.HandleRegister))
			authGroup.POST("/login", a.auditAuth("auth.login", a.authHandler.HandleLogin))
		}

		apiGroup.GET("/auth/me", a.authRequired(), a.authHandler.HandleMe)

		// User management routes - any authenticated, non-blocked user
		users := apiGroup.Group("/users")
		users.Use(a.authRequired(), a.rateLimitAPI())
		{
			users.GET("", a.handleListUsers)
			users.PATCH("/block", a.handleBlockUsers)
			users.PATCH("/unblock", a.handleUnblockUsers)
			users.DELETE("/delete", a.handleDeleteUsers)
		}

		// Backup routes (only when a backup manager is configured)
		if a.backupManager != nil {
			admin := apiGroup.Group("/admin")
			admin.Use(a.authRequired(), a.rateLimitAPI())
			{
				admin.POST("/backup", a.handleCreateBackup)
				admin.GET("/backups", a.handleListBackups)
			}
		}
	}
}
