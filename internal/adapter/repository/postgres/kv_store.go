package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/goalfolio-backend/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// KVStore implements domain.KeyValueStore on a kv_entries table
type KVStore struct {
	db *DB
}

var _ domain.ClosableStore = (*KVStore)(nil)

// NewKVStore creates the store and makes sure the kv_entries table exists
func NewKVStore(ctx context.Context, db *DB) (*KVStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create kv_entries table: %w", err)
	}
	return &KVStore{db: db}, nil
}

// Get retrieves the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM kv_entries
		WHERE key = $1
	`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("key %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set inserts or replaces the value stored under key
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection
func (s *KVStore) Close() error {
	return s.db.Close()
}
