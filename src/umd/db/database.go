// Package db provides database functionality for umd backed by a SQLite
// file on disk, with snapshot support for backups.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nephophile/umt/src/common/paths"
	_ "github.com/mattn/go-sqlite3"
)

// Database wraps the SQLite connection with schema and settings management
type Database struct {
	db        *sql.DB
	path      string
	mu        sync.Mutex
	closeOnce sync.Once
}

// Config holds the database configuration
type Config struct {
	// Path is the SQLite database file path. Empty or ":memory:" opens an
	// in-memory database (used by tests).
	Path string
}

// DefaultConfig returns a default database configuration
func DefaultConfig() Config {
	return Config{
		Path: "~/.umd/umd.db",
	}
}

// New opens (or creates) the database and initializes the schema
func New(cfg Config) (*Database, error) {
	// Expand ~ and env vars in the database path
	path := paths.Expand(cfg.Path)

	dsn := ":memory:"
	if path != "" && path != ":memory:" {
		if err := paths.EnsureDir(path); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent request handlers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	database := &Database{
		db:   db,
		path: path,
	}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// initSchema creates the database tables
func (d *Database) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'blocked')),
		last_login DATETIME,
		registration_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_last_login ON users(last_login);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := d.db.Exec(schema)
	return err
}

// DB returns the underlying sql.DB for direct queries
func (d *Database) DB() *sql.DB {
	return d.db
}

// Path returns the database file path (empty for in-memory databases)
func (d *Database) Path() string {
	return d.path
}

// Snapshot writes a consistent copy of the database to dstPath using
// VACUUM INTO. The destination file must not already exist.
func (d *Database) Snapshot(dstPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	// VACUUM INTO refuses to overwrite, remove leftovers from failed runs
	os.Remove(dstPath)

	query := fmt.Sprintf("VACUUM INTO '%s'", dstPath)
	if _, err := d.db.Exec(query); err != nil {
		os.Remove(dstPath)
		return fmt.Errorf("failed to snapshot database: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	var closeErr error
	d.closeOnce.Do(func() {
		closeErr = d.db.Close()
	})
	return closeErr
}

// GetSetting retrieves a setting value by key
func (d *Database) GetSetting(key string) (string, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting stores or updates a setting value
func (d *Database) SetSetting(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetAllSettings retrieves all settings as a map
func (d *Database) GetAllSettings() (map[string]string, error) {
	rows, err := d.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return settings, nil
}
