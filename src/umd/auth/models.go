// Package auth provides credential management and JWT authentication for umd.
package auth

import "time"

// Status represents a user account status
type Status string

const (
	// StatusActive is the default status for new accounts
	StatusActive Status = "active"
	// StatusBlocked marks an account that is denied access
	StatusBlocked Status = "blocked"
)

// User represents a user account
type User struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // Never expose in JSON
	Status           Status     `json:"status"`
	LastLogin        *time.Time `json:"last_login"` // nil until the first login
	RegistrationTime time.Time  `json:"registration_time"`
}

// IsBlocked returns true if the account is blocked
func (u *User) IsBlocked() bool {
	return u.Status == StatusBlocked
}

// RegisterRequest is the request body for user registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenClaims represents the validated JWT token claims
type TokenClaims struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	TokenID string `json:"jti"`
}
