// Package artifact stores named task artifacts (JSON blobs) under
// <task-id>/artifacts/<name>.json on the local filesystem, S3 or GCS.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNotFound is returned by Get when the artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Store abstracts blob storage for task artifacts.
type Store interface {
	Put(ctx context.Context, taskID, name string, data []byte) error
	Get(ctx context.Context, taskID, name string) ([]byte, error)
}

var segment = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Key returns the object key for an artifact. Both parts must be a single
// path segment.
func Key(taskID, name string) (string, error) {
	for _, part := range []string{taskID, name} {
		if !segment.MatchString(part) || part == "." || part == ".." {
			return "", fmt.Errorf("invalid artifact key segment %q", part)
		}
	}
	return taskID + "/artifacts/" + name + ".json", nil
}

// LocalStore implements Store using the local filesystem.
// Useful for development and testing.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{BaseDir: baseDir}
}

// Put writes an artifact, creating directories as needed.
func (s *LocalStore) Put(_ context.Context, taskID, name string, data []byte) error {
	key, err := Key(taskID, name)
	if err != nil {
		return err
	}
	path := filepath.Join(s.BaseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get reads an artifact.
func (s *LocalStore) Get(_ context.Context, taskID, name string) ([]byte, error) {
	key, err := Key(taskID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.BaseDir, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return data, err
}
