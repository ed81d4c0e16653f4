package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nephophile/umt/src/umd/auth"
	"github.com/nephophile/umt/src/umd/db"
	"github.com/gin-gonic/gin"
)

func setupTestAPI(t *testing.T) (*gin.Engine, *auth.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.New(db.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := auth.NewRepository(database.DB())
	jwtService := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", TokenDuration: time.Hour}, nil)

	a := New(Config{
		Repo:       repo,
		JWTService: jwtService,
		Database:   database,
		RateLimit:  RateLimitConfig{Enabled: false},
	})
	t.Cleanup(a.Stop)

	router := gin.New()
	a.RegisterRoutes(router)

	return router, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := make(map[string]interface{})
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}

	return w, resp
}

func register(t *testing.T, router *gin.Engine, name, email, password string) (int64, string) {
	t.Helper()

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}

	user := resp["user"].(map[string]interface{})
	return int64(user["id"].(float64)), resp["token"].(string)
}

func TestRegister(t *testing.T) {
	router, _ := setupTestAPI(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if resp["token"] == "" {
		t.Fatal("expected a session token in the response")
	}

	user := resp["user"].(map[string]interface{})
	if user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user email: %v", user["email"])
	}
	if user["status"] != "active" {
		t.Fatalf("expected new user to be active, got %v", user["status"])
	}
	if user["last_login"] != nil {
		t.Fatalf("expected no last login, got %v", user["last_login"])
	}
	if _, ok := user["password_hash"]; ok {
		t.Fatal("password hash must never appear in responses")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router, _ := setupTestAPI(t)

	register(t, router, "alice", "alice@example.com", "secret123")

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "alice again",
		"email":    "alice@example.com",
		"password": "othersecret",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", w.Code)
	}
	if resp["error"] != "user.email_exists" {
		t.Fatalf("unexpected error code: %v", resp["error"])
	}
}

func TestRegister_MissingFields(t *testing.T) {
	router, _ := setupTestAPI(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	router, repo := setupTestAPI(t)

	userID, _ := register(t, router, "alice", "alice@example.com", "secret123")

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp["token"] == "" {
		t.Fatal("expected a session token")
	}

	user := resp["user"].(map[string]interface{})
	if user["last_login"] == nil {
		t.Fatal("expected last_login to be set after login")
	}

	// The login is recorded in the store as well
	stored, err := repo.GetUserByID(userID)
	if err != nil {
		t.Fatalf("failed to fetch user: %v", err)
	}
	if stored.LastLogin == nil {
		t.Fatal("expected stored last_login to be set")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := setupTestAPI(t)

	register(t, router, "alice", "alice@example.com", "secret123")

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if resp["error"] != "auth.invalid_credentials" {
		t.Fatalf("unexpected error code: %v", resp["error"])
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	router, _ := setupTestAPI(t)

	// Unknown emails get the same response as wrong passwords
	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if resp["error"] != "auth.invalid_credentials" {
		t.Fatalf("unexpected error code: %v", resp["error"])
	}
}

func TestLogin_LastLoginWriteFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	database, err := db.New(db.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer database.Close()

	repo := auth.NewRepository(database.DB())
	jwtService := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", TokenDuration: time.Hour}, nil)

	a := New(Config{
		Repo:       repo,
		JWTService: jwtService,
		Database:   database,
		RateLimit:  RateLimitConfig{Enabled: false},
	})
	defer a.Stop()

	router := gin.New()
	a.RegisterRoutes(router)

	register(t, router, "alice", "alice@example.com", "secret123")

	// Make the last_login write fail while lookups keep working
	if _, err := database.DB().Exec(`
		CREATE TRIGGER reject_last_login BEFORE UPDATE OF last_login ON users
		BEGIN SELECT RAISE(ABORT, 'last_login locked'); END
	`); err != nil {
		t.Fatalf("failed to create trigger: %v", err)
	}

	// A login whose store write fails surfaces as a 500, not a 200
	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the login cannot be recorded, got %d: %s", w.Code, w.Body.String())
	}
	if resp["error"] != "internal.internal_error" {
		t.Fatalf("unexpected error code: %v", resp["error"])
	}
	if _, ok := resp["token"]; ok {
		t.Fatal("no token must be issued when the login cannot be recorded")
	}
}

func TestLogin_Blocked(t *testing.T) {
	router, repo := setupTestAPI(t)

	userID, _ := register(t, router, "alice", "alice@example.com", "secret123")

	if _, err := repo.BlockUsers([]int64{userID}); err != nil {
		t.Fatalf("failed to block user: %v", err)
	}

	// Blocked status is reported even with a wrong password
	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for blocked account, got %d", w.Code)
	}
	if resp["error"] != "auth.account_blocked" {
		t.Fatalf("unexpected error code: %v", resp["error"])
	}
}

func TestAccessGuard(t *testing.T) {
	router, repo := setupTestAPI(t)

	userID, token := register(t, router, "alice", "alice@example.com", "secret123")

	// No token
	w, _ := doJSON(t, router, http.MethodGet, "/api/users", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Garbage token
	w, _ = doJSON(t, router, http.MethodGet, "/api/users", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", w.Code)
	}

	// Valid token
	w, _ = doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", w.Code, w.Body.String())
	}

	// Blocking takes effect on the very next request, not at token expiry
	if _, err := repo.BlockUsers([]int64{userID}); err != nil {
		t.Fatalf("failed to block user: %v", err)
	}
	w, resp := doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for blocked account, got %d", w.Code)
	}
	if resp["error"] != "auth.account_blocked" {
		t.Fatalf("unexpected error code: %v", resp["error"])
	}

	// A deleted account invalidates the token entirely
	if _, err := repo.DeleteUsers([]int64{userID}); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}
	w, _ = doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after account deletion, got %d", w.Code)
	}
}

func TestListUsers_Order(t *testing.T) {
	router, repo := setupTestAPI(t)

	aliceID, _ := register(t, router, "alice", "alice@example.com", "secret123")
	bobID, _ := register(t, router, "bob", "bob@example.com", "secret123")
	register(t, router, "carol", "carol@example.com", "secret123")

	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastLogin(aliceID, base); err != nil {
		t.Fatalf("failed to set last login: %v", err)
	}
	if err := repo.UpdateLastLogin(bobID, base.Add(time.Hour)); err != nil {
		t.Fatalf("failed to set last login: %v", err)
	}

	_, token := register(t, router, "admin", "admin@example.com", "secret123")

	w, resp := doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	users := resp["users"].([]interface{})
	if len(users) != 4 {
		t.Fatalf("expected 4 users, got %d", len(users))
	}

	// bob logged in most recently, then alice, carol and admin never did
	first := users[0].(map[string]interface{})
	second := users[1].(map[string]interface{})
	if first["email"] != "bob@example.com" {
		t.Fatalf("expected bob first, got %v", first["email"])
	}
	if second["email"] != "alice@example.com" {
		t.Fatalf("expected alice second, got %v", second["email"])
	}
	for _, u := range users[2:] {
		if u.(map[string]interface{})["last_login"] != nil {
			t.Fatalf("expected never-logged-in users last, got %v", u)
		}
	}
}

func TestBlockUnblockDelete(t *testing.T) {
	router, _ := setupTestAPI(t)

	aliceID, _ := register(t, router, "alice", "alice@example.com", "secret123")
	bobID, _ := register(t, router, "bob", "bob@example.com", "secret123")
	_, token := register(t, router, "admin", "admin@example.com", "secret123")

	// Block both plus an ID that matches nothing
	w, resp := doJSON(t, router, http.MethodPatch, "/api/users/block", token, map[string]interface{}{
		"userIds": []int64{aliceID, bobID, 9999},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp["message"] != "2 user(s) blocked successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	blocked := resp["blockedUsers"].([]interface{})
	if len(blocked) != 2 {
		t.Fatalf("expected 2 blocked users, got %d", len(blocked))
	}
	for _, u := range blocked {
		if u.(map[string]interface{})["status"] != "blocked" {
			t.Fatalf("expected blocked status, got %v", u)
		}
	}

	// Unblock one
	w, resp = doJSON(t, router, http.MethodPatch, "/api/users/unblock", token, map[string]interface{}{
		"userIds": []int64{aliceID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["message"] != "1 user(s) unblocked successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	unblocked := resp["unblockedUsers"].([]interface{})
	if len(unblocked) != 1 {
		t.Fatalf("expected 1 unblocked user, got %d", len(unblocked))
	}

	// Delete returns the rows as they were before deletion
	w, resp = doJSON(t, router, http.MethodDelete, "/api/users/delete", token, map[string]interface{}{
		"userIds": []int64{bobID, 9999},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["message"] != "1 user(s) deleted successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	deleted := resp["deletedUsers"].([]interface{})
	if len(deleted) != 1 {
		t.Fatalf("expected 1 deleted user, got %d", len(deleted))
	}
	if deleted[0].(map[string]interface{})["email"] != "bob@example.com" {
		t.Fatalf("unexpected deleted user: %v", deleted[0])
	}
}

func TestBulkRequest_Validation(t *testing.T) {
	router, _ := setupTestAPI(t)
	_, token := register(t, router, "admin", "admin@example.com", "secret123")

	// Empty ID list is rejected
	w, _ := doJSON(t, router, http.MethodPatch, "/api/users/block", token, map[string]interface{}{
		"userIds": []int64{},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty ID list, got %d", w.Code)
	}

	// Missing body is rejected
	w, _ = doJSON(t, router, http.MethodPatch, "/api/users/block", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing body, got %d", w.Code)
	}
}

func TestSelfDelete(t *testing.T) {
	router, _ := setupTestAPI(t)

	userID, token := register(t, router, "alice", "alice@example.com", "secret123")

	// Deleting your own account succeeds
	w, _ := doJSON(t, router, http.MethodDelete, "/api/users/delete", token, map[string]interface{}{
		"userIds": []int64{userID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// The same session is rejected on the next request
	w, _ = doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after self-deletion, got %d", w.Code)
	}
}

func TestMe(t *testing.T) {
	router, _ := setupTestAPI(t)

	userID, token := register(t, router, "alice", "alice@example.com", "secret123")

	w, resp := doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	user := resp["user"].(map[string]interface{})
	if int64(user["id"].(float64)) != userID {
		t.Fatalf("expected user ID %d, got %v", userID, user["id"])
	}
}

func TestHealth(t *testing.T) {
	router, _ := setupTestAPI(t)

	w, resp := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["status"] != "ok" {
		t.Fatalf("unexpected health status: %v", resp["status"])
	}
	if resp["message"] != "Server is running" {
		t.Fatalf("unexpected health message: %v", resp["message"])
	}
}

func TestAuthRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	database, err := db.New(db.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer database.Close()

	repo := auth.NewRepository(database.DB())
	jwtService := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret"}, nil)

	a := New(Config{
		Repo:       repo,
		JWTService: jwtService,
		Database:   database,
		RateLimit: RateLimitConfig{
			Enabled:            true,
			AuthRequestsPerMin: 2,
			APIRequestsPerMin:  100,
		},
	})
	defer a.Stop()

	router := gin.New()
	a.RegisterRoutes(router)

	for i := 0; i < 2; i++ {
		w, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    fmt.Sprintf("user%d@example.com", i),
			"password": "whatever",
		})
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d should not be rate limited", i+1)
		}
	}

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "whatever",
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After header, got %q", w.Header().Get("Retry-After"))
	}
	if resp["error"] != "auth.rate_limited" {
		t.Fatalf("unexpected error code: %v", resp["error"])
	}
}

func TestAuthRateLimit_SpoofedForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	database, err := db.New(db.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer database.Close()

	repo := auth.NewRepository(database.DB())
	jwtService := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret"}, nil)

	a := New(Config{
		Repo:       repo,
		JWTService: jwtService,
		Database:   database,
		RateLimit: RateLimitConfig{
			Enabled:            true,
			AuthRequestsPerMin: 2,
			APIRequestsPerMin:  100,
		},
	})
	defer a.Stop()

	// With no trusted proxies configured, forwarded headers must not
	// influence the client IP the limiter keys on
	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		t.Fatalf("failed to clear trusted proxies: %v", err)
	}
	a.RegisterRoutes(router)

	attempt := func(forwardedFor string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{
			"email":    "user@example.com",
			"password": "whatever",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		w := attempt(fmt.Sprintf("10.0.0.%d", i+1))
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d should not be rate limited", i+1)
		}
	}

	w := attempt("10.0.0.3")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 despite rotating X-Forwarded-For, got %d", w.Code)
	}
}
