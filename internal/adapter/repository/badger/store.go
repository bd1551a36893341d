package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/simaogato/goalfolio-backend/internal/domain"
)

// Store implements domain.KeyValueStore on a Badger database
type Store struct {
	bd *badger.DB
}

var _ domain.ClosableStore = (*Store)(nil)

// Open opens (or creates) the database in dir.
// An empty dir opens an in-memory database.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	b, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{bd: b}, nil
}

// Get reads the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.bd.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("key %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set writes value under key in its own transaction
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	err := s.bd.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf)
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.bd.Close()
}
