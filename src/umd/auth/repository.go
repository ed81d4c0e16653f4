package auth

import (
	"database/sql"
	"strings"
	"time"

	"github.com/nephophile/umt/src/common/errors"
	"github.com/mattn/go-sqlite3"
)

// Repository handles user persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new auth repository.
// Note: The users table is created by db.Database.initSchema()
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// userColumns is the column list shared by all user queries
const userColumns = "id, name, email, password_hash, status, last_login, registration_time"

// listOrder sorts most recently logged-in first, never-logged-in last.
// Ties among never-logged-in users fall back to registration order.
const listOrder = "ORDER BY (last_login IS NULL), last_login DESC, registration_time ASC, id ASC"

// scanUser scans a user row from a query using userColumns
func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	user := &User{}
	var lastLogin sql.NullTime
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Status, &lastLogin, &user.RegistrationTime)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		user.LastLogin = &t
	}
	user.RegistrationTime = user.RegistrationTime.UTC()
	return user, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// CreateUser inserts a new active user and returns it with its assigned ID.
// Email uniqueness is enforced by the database, not a pre-check, so
// concurrent registrations cannot race past each other.
func (r *Repository) CreateUser(name, email, passwordHash string) (*User, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO users (name, email, password_hash, status, registration_time)
		VALUES (?, ?, ?, ?, ?)
	`, name, email, passwordHash, StatusActive, now)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.ErrEmailAlreadyExists
		}
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}

	return &User{
		ID:               id,
		Name:             name,
		Email:            email,
		PasswordHash:     passwordHash,
		Status:           StatusActive,
		RegistrationTime: now,
	}, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(id int64) (*User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(email string) (*User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return user, nil
}

// UpdateLastLogin records a successful login at the given time. The stored
// value never moves backwards, so delayed writes cannot shadow a newer login.
func (r *Repository) UpdateLastLogin(id int64, at time.Time) error {
	at = at.UTC()
	_, err := r.db.Exec(`
		UPDATE users SET last_login = ?
		WHERE id = ? AND (last_login IS NULL OR last_login <= ?)
	`, at, id, at)
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	return nil
}

// ListUsers returns all users, most recent login first, users that never
// logged in last
func (r *Repository) ListUsers() ([]*User, error) {
	rows, err := r.db.Query("SELECT " + userColumns + " FROM users " + listOrder)
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.ErrDatabaseQuery.WithCause(err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}

	return users, nil
}

// CountUsers returns the total number of users
func (r *Repository) CountUsers() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, errors.ErrDatabaseQuery.WithCause(err)
	}
	return count, nil
}

// placeholders builds a "?, ?, ..." list for n parameters
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// idArgs converts an ID slice to query arguments
func idArgs(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// setStatus updates the status of all matching users and returns the
// affected rows. IDs without a matching user are silently skipped.
func (r *Repository) setStatus(ids []int64, status Status) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	args := idArgs(ids)
	in := placeholders(len(ids))

	if _, err := tx.Exec("UPDATE users SET status = ? WHERE id IN ("+in+")",
		append([]interface{}{status}, args...)...); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}

	users, err := queryUsersIn(tx, in, args)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}

	return users, nil
}

// queryUsersIn selects users whose IDs are in the given placeholder list
func queryUsersIn(tx *sql.Tx, in string, args []interface{}) ([]*User, error) {
	rows, err := tx.Query("SELECT "+userColumns+" FROM users WHERE id IN ("+in+") "+listOrder, args...)
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.ErrDatabaseQuery.WithCause(err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}

	return users, nil
}

// BlockUsers marks the given users as blocked and returns the updated rows
func (r *Repository) BlockUsers(ids []int64) ([]*User, error) {
	return r.setStatus(ids, StatusBlocked)
}

// UnblockUsers marks the given users as active and returns the updated rows
func (r *Repository) UnblockUsers(ids []int64) ([]*User, error) {
	return r.setStatus(ids, StatusActive)
}

// DeleteUsers removes the given users and returns the rows as they were
// before deletion. IDs without a matching user are silently skipped.
func (r *Repository) DeleteUsers(ids []int64) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	args := idArgs(ids)
	in := placeholders(len(ids))

	users, err := queryUsersIn(tx, in, args)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec("DELETE FROM users WHERE id IN ("+in+")", args...); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}

	return users, nil
}
