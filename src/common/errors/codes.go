package errors

import "net/http"

// Common error codes used across domains
const (
	CodeNotFound       Code = "not_found"
	CodeAlreadyExists  Code = "already_exists"
	CodeInvalidRequest Code = "invalid_request"
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeInternal       Code = "internal_error"
	CodeRateLimited    Code = "rate_limited"
)

// ============================================================================
// Authentication Errors
// ============================================================================

var (
	// ErrInvalidCredentials is returned when authentication fails due to invalid credentials
	ErrInvalidCredentials = New(DomainAuth, "invalid_credentials", http.StatusUnauthorized,
		"Invalid email or password")

	// ErrTokenExpired is returned when a JWT token has expired
	ErrTokenExpired = New(DomainAuth, "token_expired", http.StatusUnauthorized,
		"Token has expired")

	// ErrTokenInvalid is returned when a JWT token is malformed or invalid
	ErrTokenInvalid = New(DomainAuth, "token_invalid", http.StatusUnauthorized,
		"Invalid token")

	// ErrNoToken is returned when no authentication token is provided
	ErrNoToken = New(DomainAuth, "no_token", http.StatusUnauthorized,
		"Access token required")

	// ErrAccountBlocked is returned when the account tied to the request is blocked
	ErrAccountBlocked = New(DomainAuth, "account_blocked", http.StatusForbidden,
		"Account is blocked")

	// ErrRateLimited is returned when a client exceeds the request rate limit
	ErrRateLimited = New(DomainAuth, CodeRateLimited, http.StatusTooManyRequests,
		"Too many requests")
)

// ============================================================================
// User Errors
// ============================================================================

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = New(DomainUser, CodeNotFound, http.StatusNotFound,
		"User not found")

	// ErrEmailAlreadyExists is returned when the email is already registered.
	// The store's unique constraint is the source of truth; registration maps
	// the constraint violation to this error with a 400 per the API contract.
	ErrEmailAlreadyExists = New(DomainUser, "email_exists", http.StatusBadRequest,
		"Email already exists")
)

// ============================================================================
// Validation Errors
// ============================================================================

var (
	// ErrValidationFailed is returned when request validation fails
	ErrValidationFailed = New(DomainValidation, "validation_failed", http.StatusBadRequest,
		"Validation failed")

	// ErrMissingRequiredField is returned when a required field is missing
	ErrMissingRequiredField = New(DomainValidation, "missing_field", http.StatusBadRequest,
		"Missing required field")

	// ErrInvalidJSON is returned when JSON parsing fails
	ErrInvalidJSON = New(DomainValidation, "invalid_json", http.StatusBadRequest,
		"Invalid JSON")
)

// ============================================================================
// Database Errors
// ============================================================================

var (
	// ErrDatabaseQuery is returned when a database query fails
	ErrDatabaseQuery = New(DomainDatabase, "query_failed", http.StatusInternalServerError,
		"Database query failed")

	// ErrDatabaseTransaction is returned when a database transaction fails
	ErrDatabaseTransaction = New(DomainDatabase, "transaction_failed", http.StatusInternalServerError,
		"Database transaction failed")
)

// ============================================================================
// Backup Errors
// ============================================================================

var (
	// ErrBackupFailed is returned when a database backup cannot be produced or stored
	ErrBackupFailed = New(DomainBackup, "backup_failed", http.StatusInternalServerError,
		"Database backup failed")

	// ErrBackupUnavailable is returned when no backup storage backend is configured
	ErrBackupUnavailable = New(DomainBackup, "unavailable", http.StatusServiceUnavailable,
		"Backup storage not configured")
)

// ============================================================================
// Internal Errors
// ============================================================================

var (
	// ErrInternal is a generic internal server error
	ErrInternal = New(DomainInternal, CodeInternal, http.StatusInternalServerError,
		"Internal server error")
)
