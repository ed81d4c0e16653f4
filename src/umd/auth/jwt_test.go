package auth

import (
	"testing"
	"time"
)

// memSettings is an in-memory SettingsStore for tests
type memSettings struct {
	values map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{values: make(map[string]string)}
}

func (m *memSettings) GetSetting(key string) (string, error) {
	return m.values[key], nil
}

func (m *memSettings) SetSetting(key, value string) error {
	m.values[key] = value
	return nil
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig(), newMemSettings())

	now := time.Now().UTC()
	user := &User{
		ID:               42,
		Name:             "alice",
		Email:            "alice@example.com",
		Status:           StatusActive,
		RegistrationTime: now,
	}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user ID 42, got %d", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("expected email alice@example.com, got %s", claims.Email)
	}
	if claims.TokenID == "" {
		t.Fatal("expected a token ID")
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig(), newMemSettings())

	if _, err := svc.ValidateToken("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestValidateToken_WrongKey(t *testing.T) {
	svc1 := NewJWTService(JWTConfig{Secret: "key-one"}, nil)
	svc2 := NewJWTService(JWTConfig{Secret: "key-two"}, nil)

	user := &User{ID: 1, Name: "alice", Email: "alice@example.com"}
	token, err := svc1.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := svc2.ValidateToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for foreign key, got: %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(JWTConfig{Secret: "test-key", TokenDuration: -time.Hour}, nil)

	// TokenDuration <= 0 falls back to the default, so build an expired
	// service explicitly
	svc.tokenDuration = -time.Hour

	user := &User{ID: 1, Name: "alice", Email: "alice@example.com"}
	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got: %v", err)
	}
}

func TestJWTSecretPersistence(t *testing.T) {
	settings := newMemSettings()

	svc1 := NewJWTService(DefaultJWTConfig(), settings)
	user := &User{ID: 7, Name: "bob", Email: "bob@example.com"}
	token, err := svc1.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	// A second service over the same settings store must validate tokens
	// issued by the first (simulates a server restart)
	svc2 := NewJWTService(DefaultJWTConfig(), settings)
	claims, err := svc2.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token after restart: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("expected user ID 7, got %d", claims.UserID)
	}
}

func TestGetTokenExpiry(t *testing.T) {
	svc := NewJWTService(JWTConfig{Secret: "test-key", TokenDuration: time.Hour}, nil)

	user := &User{ID: 1, Name: "alice", Email: "alice@example.com"}
	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	expiry, err := svc.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("failed to get token expiry: %v", err)
	}

	until := time.Until(expiry)
	if until < 55*time.Minute || until > 65*time.Minute {
		t.Fatalf("expected expiry about an hour away, got %v", until)
	}
}
