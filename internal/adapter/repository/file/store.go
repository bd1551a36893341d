// Package file stores each key as its own file inside a directory.
// Writes replace the file atomically, so a crash never leaves a half-written record.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/simaogato/goalfolio-backend/internal/domain"
)

// Store keeps each key as <dir>/<key>.json
type Store struct {
	dir string
	mu  sync.RWMutex
}

var _ domain.ClosableStore = (*Store)(nil)

// NewStore creates a store rooted at dir, creating the directory if needed
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get reads the file for key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("key %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set atomically replaces the file for key
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return atomic.WriteFile(s.pathFor(key), bytes.NewReader(value))
}

// Close is a no-op; files are closed after every operation
func (s *Store) Close() error {
	return nil
}

// Dir returns the directory the store writes to
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}
