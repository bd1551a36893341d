package domain

import "context"

// Storage keys of the persisted records
const (
	KeySavedPositions    = "savedPositions"
	KeyDailyMarketValues = "dailyMarketValues"
	KeySavedTickers      = "savedTickers"
)

// KeyValueStore defines the persistence capability shared by all stores.
// Every record is a serialized blob under a fixed key.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	// A subsequent Get must observe the new value.
	Set(ctx context.Context, key string, value []byte) error
}

// ClosableStore is a KeyValueStore holding resources (files, connections) that must be released
type ClosableStore interface {
	KeyValueStore
	Close() error
}
