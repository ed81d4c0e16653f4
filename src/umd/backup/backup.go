// Package backup produces xz-compressed snapshots of the umd database and
// ships them to a storage backend.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nephophile/umt/src/common/logs"
	"github.com/nephophile/umt/src/umd/storage"
	"github.com/ulikunitz/xz"
)

// Package-level logger, must be initialized via SetLogger
var log *logs.Logger

// SetLogger sets the package-level logger
func SetLogger(l *logs.Logger) {
	log = l
}

// Snapshotter produces a consistent copy of the database at the given path
type Snapshotter interface {
	Snapshot(dstPath string) error
}

// Config holds backup configuration
type Config struct {
	// Prefix is the storage key prefix for backup objects
	Prefix string
	// Retention is the number of backups to keep, older ones are pruned.
	// Zero disables pruning.
	Retention int
}

// DefaultConfig returns a default backup configuration
func DefaultConfig() Config {
	return Config{
		Prefix:    "backups",
		Retention: 7,
	}
}

// Manager coordinates database snapshots, compression and upload
type Manager struct {
	db      Snapshotter
	backend storage.Backend
	config  Config
}

// Info describes a completed backup
type Info struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// NewManager creates a backup manager
func NewManager(db Snapshotter, backend storage.Backend, cfg Config) *Manager {
	if cfg.Prefix == "" {
		cfg.Prefix = "backups"
	}
	return &Manager{
		db:      db,
		backend: backend,
		config:  cfg,
	}
}

// Run takes a snapshot, compresses it and uploads it to the backend.
// Returns metadata about the uploaded backup.
func (m *Manager) Run(ctx context.Context) (*Info, error) {
	createdAt := time.Now().UTC()

	workDir, err := os.MkdirTemp("", "umd-backup-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	snapshotPath := filepath.Join(workDir, "umd.db")
	if err := m.db.Snapshot(snapshotPath); err != nil {
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	compressedPath := snapshotPath + ".xz"
	if err := CompressFile(snapshotPath, compressedPath); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	stat, err := os.Stat(compressedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat compressed snapshot: %w", err)
	}

	file, err := os.Open(compressedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed snapshot: %w", err)
	}
	defer file.Close()

	key := fmt.Sprintf("%s/umd-%s.db.xz", m.config.Prefix, createdAt.Format("20060102T150405Z"))
	if err := m.backend.Upload(ctx, key, file, stat.Size(), "application/x-xz"); err != nil {
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}

	if log != nil {
		log.Info("Backup uploaded", "key", key, "size", stat.Size(), "backend", m.backend.Type())
	}

	if err := m.prune(ctx); err != nil && log != nil {
		log.Warn("Failed to prune old backups", "error", err)
	}

	return &Info{
		Key:       key,
		Size:      stat.Size(),
		CreatedAt: createdAt,
	}, nil
}

// List returns all backups in the backend, newest first
func (m *Manager) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	objects, err := m.backend.List(ctx, m.config.Prefix+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	// Keys embed a UTC timestamp, so lexical order is chronological
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Key > objects[j].Key
	})

	return objects, nil
}

// prune removes backups beyond the configured retention count
func (m *Manager) prune(ctx context.Context) error {
	if m.config.Retention <= 0 {
		return nil
	}

	objects, err := m.List(ctx)
	if err != nil {
		return err
	}

	for _, obj := range objects[min(len(objects), m.config.Retention):] {
		if err := m.backend.Delete(ctx, obj.Key); err != nil {
			return fmt.Errorf("failed to delete backup %s: %w", obj.Key, err)
		}
		if log != nil {
			log.Debug("Pruned old backup", "key", obj.Key)
		}
	}

	return nil
}

// CompressFile writes an xz-compressed copy of srcPath to dstPath
func CompressFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dstPath, err)
	}
	defer dst.Close()

	xzWriter, err := xz.NewWriter(dst)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}

	if _, err := io.Copy(xzWriter, src); err != nil {
		return fmt.Errorf("failed to compress %s: %w", srcPath, err)
	}

	return xzWriter.Close()
}
