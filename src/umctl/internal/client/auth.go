package client

import (
	"context"
	"time"
)

// UserInfo represents a user account as returned by the server
type UserInfo struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Status           string     `json:"status"`
	LastLogin        *time.Time `json:"last_login"`
	RegistrationTime time.Time  `json:"registration_time"`
}

// AuthResponse represents the register and login API responses
type AuthResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
	Token   string   `json:"token"`
}

// MeResponse represents the /api/auth/me API response
type MeResponse struct {
	User UserInfo `json:"user"`
}

// RegisterRequest represents a registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user account and returns a session token
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	req := RegisterRequest{Name: name, Email: email, Password: password}

	var resp AuthResponse
	if err := c.Post(ctx, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with the server and returns a session token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := LoginRequest{Email: email, Password: password}

	var resp AuthResponse
	if err := c.Post(ctx, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me validates the current token and returns the account it belongs to
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.Get(ctx, "/api/auth/me", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
