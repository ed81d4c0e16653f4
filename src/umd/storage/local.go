package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nephophile/umt/src/common/paths"
)

// LocalConfig holds the local filesystem storage configuration
type LocalConfig struct {
	// BasePath is the root directory for storing backups
	BasePath string
}

// LocalBackend implements storage on the local filesystem
type LocalBackend struct {
	basePath string
}

// NewLocal creates a new local filesystem storage backend
func NewLocal(cfg LocalConfig) (*LocalBackend, error) {
	// Expand path (handle ~ and env vars)
	basePath := paths.Expand(cfg.BasePath)

	// Ensure base directory exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalBackend{
		basePath: basePath,
	}, nil
}

// fullPath returns the full filesystem path for a key
func (b *LocalBackend) fullPath(key string) string {
	// Clean the key to prevent directory traversal
	cleanKey := filepath.Clean(key)
	for strings.HasPrefix(cleanKey, "/") || strings.HasPrefix(cleanKey, "../") {
		cleanKey = strings.TrimPrefix(cleanKey, "/")
		cleanKey = strings.TrimPrefix(cleanKey, "../")
	}

	fullPath := filepath.Join(b.basePath, cleanKey)

	// Final safety check: ensure the path is within basePath
	absBase, _ := filepath.Abs(b.basePath)
	absFull, _ := filepath.Abs(fullPath)
	if !strings.HasPrefix(absFull, absBase) {
		return filepath.Join(b.basePath, filepath.Base(cleanKey))
	}

	return fullPath
}

// Upload writes data to the local filesystem
func (b *LocalBackend) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	fullPath := b.fullPath(key)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		os.Remove(fullPath) // Clean up on error
		return fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	if size > 0 && written != size {
		os.Remove(fullPath) // Clean up on error
		return fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", size, written)
	}

	return nil
}

// Delete deletes a file from the local filesystem
func (b *LocalBackend) Delete(ctx context.Context, key string) error {
	fullPath := b.fullPath(key)

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted, not an error
		}
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	// Try to remove empty parent directories
	b.cleanEmptyDirs(filepath.Dir(fullPath))

	return nil
}

// cleanEmptyDirs removes empty parent directories up to basePath
func (b *LocalBackend) cleanEmptyDirs(dir string) {
	for dir != b.basePath && strings.HasPrefix(dir, b.basePath) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}

// Exists checks if a file exists
func (b *LocalBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(b.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file %s: %w", b.fullPath(key), err)
	}
	return true, nil
}

// List lists files with the given prefix
func (b *LocalBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	err := filepath.Walk(b.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(b.basePath, path)
		if err != nil {
			return nil
		}

		if prefix != "" && !strings.HasPrefix(relPath, strings.TrimPrefix(prefix, "/")) {
			return nil
		}

		objects = append(objects, ObjectInfo{
			Key:          relPath,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})

		return nil
	})

	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list files under %s: %w", b.basePath, err)
	}

	return objects, nil
}

// Ping checks if the storage directory is accessible
func (b *LocalBackend) Ping(ctx context.Context) error {
	if _, err := os.Stat(b.basePath); err != nil {
		return fmt.Errorf("storage directory not accessible: %w", err)
	}
	return nil
}

// Type returns the storage backend type
func (b *LocalBackend) Type() string {
	return "local"
}

// Location returns the base path
func (b *LocalBackend) Location() string {
	return b.basePath
}
