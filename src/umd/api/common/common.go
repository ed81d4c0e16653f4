// Package common provides shared helpers for umd API handlers.
package common

import (
	"net/http"

	"github.com/nephophile/umt/src/umd/auth"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a plain error payload for responses that are not tied
// to a structured error code
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetUserFromContext retrieves the user stored by the auth middleware
func GetUserFromContext(c *gin.Context) *auth.User {
	return auth.UserFromContext(c)
}

// GetClaimsFromContext retrieves the token claims stored by the auth middleware
func GetClaimsFromContext(c *gin.Context) *auth.TokenClaims {
	if claims, exists := c.Get("claims"); exists {
		if tokenClaims, ok := claims.(*auth.TokenClaims); ok {
			return tokenClaims
		}
	}
	return nil
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Bad request",
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// InternalError sends a 500 Internal Server Error response
func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}

// ServiceUnavailable sends a 503 Service Unavailable response
func ServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error:   "Service unavailable",
		Code:    http.StatusServiceUnavailable,
		Message: message,
	})
}
