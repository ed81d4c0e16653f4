package api

import (
	"fmt"
	"net/http"

	"github.com/nephophile/umt/src/common/errors"
	"github.com/nephophile/umt/src/umd/api/common"
	"github.com/nephophile/umt/src/umd/auth"
	"github.com/gin-gonic/gin"
)

// auditAuth wraps an auth endpoint and records its outcome as an audit event
func (a *API) auditAuth(action string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		handler(c)
		common.AuditLog(c, common.AuditEvent{
			Action:  action,
			Success: c.Writer.Status() < http.StatusBadRequest,
		})
	}
}

// rateLimitAuth returns middleware that rate-limits auth endpoints (register/login).
func (a *API) rateLimitAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.rateLimiter == nil {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if !a.rateLimiter.Allow(key, a.rateLimiter.config.AuthRequestsPerMin) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errors.ErrRateLimited.ToResponse())
			return
		}
		c.Next()
	}
}

// rateLimitAPI returns middleware that rate-limits general API endpoints.
func (a *API) rateLimitAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.rateLimiter == nil {
			c.Next()
			return
		}
		// Use user ID if authenticated, otherwise fall back to IP
		key := "ip:" + c.ClientIP()
		if user := auth.UserFromContext(c); user != nil {
			key = fmt.Sprintf("user:%d", user.ID)
		}
		if !a.rateLimiter.Allow(key, a.rateLimiter.config.APIRequestsPerMin) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errors.ErrRateLimited.ToResponse())
			return
		}
		c.Next()
	}
}

// authRequired guards endpoints behind a valid token and a live account.
// The user row is re-read on every request so a block or delete takes
// effect immediately, not when the token expires.
func (a *API) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractTokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errors.ErrNoToken.ToResponse())
			return
		}

		claims, err := a.jwtService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errors.ErrTokenExpired.ToResponse())
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, errors.ErrTokenInvalid.ToResponse())
			return
		}

		user, err := a.repo.GetUserByID(claims.UserID)
		if err != nil {
			// A deleted account invalidates its outstanding tokens
			if errors.Is(err, errors.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errors.ErrTokenInvalid.WithMessage("Account no longer exists").ToResponse())
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, errors.ErrInternal.ToResponse())
			return
		}

		if user.IsBlocked() {
			c.AbortWithStatusJSON(http.StatusForbidden, errors.ErrAccountBlocked.ToResponse())
			return
		}

		// Store claims and the resolved user for handlers to use
		c.Set("claims", claims)
		c.Set("user", user)
		c.Next()
	}
}
