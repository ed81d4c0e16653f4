package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired
	ErrExpiredToken = errors.New("token has expired")
)

// JWTService handles JWT token generation and validation
type JWTService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
}

// JWTConfig holds JWT service configuration
type JWTConfig struct {
	// Secret overrides the persisted signing key when non-empty
	Secret        string
	Issuer        string
	TokenDuration time.Duration
}

// DefaultJWTConfig returns default JWT configuration
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Issuer:        "umd",
		TokenDuration: 24 * time.Hour,
	}
}

// generateSecretKey generates a random 256-bit secret key
func generateSecretKey() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a default (not recommended for production)
		return "umd-default-secret-key-change-me"
	}
	return hex.EncodeToString(bytes)
}

// SettingsStore interface for getting/setting persistent settings
type SettingsStore interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// NewJWTService creates a new JWT service. When no secret is configured it
// loads the signing key from the settings store, generating and persisting
// one on first start so tokens survive restarts.
func NewJWTService(cfg JWTConfig, settings SettingsStore) *JWTService {
	secretKey := cfg.Secret
	if secretKey == "" && settings != nil {
		stored, err := settings.GetSetting("jwt_secret")
		if err != nil || stored == "" {
			stored = generateSecretKey()
			settings.SetSetting("jwt_secret", stored)
		}
		secretKey = stored
	}
	if secretKey == "" {
		secretKey = generateSecretKey()
	}

	if cfg.TokenDuration <= 0 {
		cfg.TokenDuration = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "umd"
	}

	return &JWTService{
		secretKey:     []byte(secretKey),
		issuer:        cfg.Issuer,
		tokenDuration: cfg.TokenDuration,
	}
}

// jwtClaims represents the full JWT claims structure
type jwtClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// GenerateToken generates a new JWT token for a user
func (s *JWTService) GenerateToken(user *User) (string, error) {
	tokenID := uuid.New().String()
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenDuration)

	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		UserID:  claims.UserID,
		Name:    claims.Name,
		Email:   claims.Email,
		TokenID: claims.ID,
	}, nil
}

// GetTokenExpiry returns the token expiry time from a token string
func (s *JWTService) GetTokenExpiry(tokenString string) (time.Time, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})

	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		return time.Time{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return time.Time{}, ErrInvalidToken
	}

	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time, nil
	}

	return time.Time{}, ErrInvalidToken
}
