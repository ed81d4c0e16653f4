package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleRoot serves the API discovery document
func (a *API) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "umd",
		"version": versionInfo.Version,
		"endpoints": gin.H{
			"health":   "/api/health",
			"version":  "/api/version",
			"register": "/api/auth/register",
			"login":    "/api/auth/login",
			"me":       "/api/auth/me",
			"users":    "/api/users",
		},
	})
}

// handleHealth reports service and database health
func (a *API) handleHealth(c *gin.Context) {
	if a.database != nil {
		if err := a.database.DB().Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"error":  "database unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Server is running",
	})
}

// handleVersion serves build version information
func (a *API) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, versionInfo.Map())
}
