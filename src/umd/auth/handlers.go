package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/nephophile/umt/src/common/errors"
	"github.com/nephophile/umt/src/common/logs"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Package-level logger, must be initialized via SetLogger
var log *logs.Logger

// SetLogger sets the package-level logger
func SetLogger(l *logs.Logger) {
	log = l
}

// Handler handles authentication HTTP requests
type Handler struct {
	repo       *Repository
	jwtService *JWTService
}

// NewHandler creates a new auth handler
func NewHandler(repo *Repository, jwtService *JWTService) *Handler {
	return &Handler{
		repo:       repo,
		jwtService: jwtService,
	}
}

// userResponse shapes a user for API responses
func userResponse(user *User) gin.H {
	return gin.H{
		"id":                user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"status":            user.Status,
		"last_login":        user.LastLogin,
		"registration_time": user.RegistrationTime,
	}
}

// HandleRegister creates a new user account with the provided credentials
// and returns a session token for it
func (h *Handler) HandleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrInvalidJSON.ToResponse())
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, errors.ErrMissingRequiredField.WithMessage("Name must not be blank").ToResponse())
		return
	}

	// Hash the password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errors.ErrInternal.ToResponse())
		return
	}

	user, err := h.repo.CreateUser(strings.TrimSpace(req.Name), req.Email, string(passwordHash))
	if err != nil {
		status := errors.GetHTTPStatus(err)
		c.JSON(status, errors.NewResponse(err))
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errors.ErrInternal.ToResponse())
		return
	}

	if log != nil {
		log.Info("User registered", "user_id", user.ID, "email", user.Email)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userResponse(user),
		"token":   token,
	})
}

// HandleLogin authenticates a user with email and password
func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrInvalidJSON.ToResponse())
		return
	}

	user, err := h.repo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, errors.ErrInvalidCredentials.ToResponse())
			return
		}
		c.JSON(http.StatusInternalServerError, errors.ErrInternal.ToResponse())
		return
	}

	// Blocked accounts are rejected before password verification so a
	// blocked user learns their status even with the wrong password
	if user.IsBlocked() {
		c.JSON(http.StatusForbidden, errors.ErrAccountBlocked.ToResponse())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, errors.ErrInvalidCredentials.ToResponse())
		return
	}

	// A login that cannot be recorded is a failed login, store errors
	// surface as 500 rather than silently skipping the write
	now := time.Now().UTC()
	if err := h.repo.UpdateLastLogin(user.ID, now); err != nil {
		if log != nil {
			log.Error("Failed to update last login", "user_id", user.ID, "error", err)
		}
		c.JSON(http.StatusInternalServerError, errors.ErrInternal.ToResponse())
		return
	}
	user.LastLogin = &now

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errors.ErrInternal.ToResponse())
		return
	}

	if log != nil {
		log.Info("User logged in", "user_id", user.ID, "email", user.Email)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse(user),
		"token":   token,
	})
}

// HandleMe returns the account of the authenticated user
func (h *Handler) HandleMe(c *gin.Context) {
	user := UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, errors.ErrNoToken.ToResponse())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse(user),
	})
}

// UserFromContext retrieves the user resolved by the auth middleware
func UserFromContext(c *gin.Context) *User {
	if v, exists := c.Get("user"); exists {
		if user, ok := v.(*User); ok {
			return user
		}
	}
	return nil
}

// ExtractTokenFromRequest extracts the JWT token from request headers
func ExtractTokenFromRequest(c *gin.Context) string {
	if token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); found {
		return token
	}
	return c.GetHeader("X-Subject-Token")
}
