// Package record reads and writes the JSON blobs kept under fixed keys of a KeyValueStore.
//
// Loading never fails hard: a payload that cannot be decoded is logged and the
// caller keeps whatever it already holds in memory. Saving never fails on
// serialization: a value that cannot be encoded is logged and replaced by an
// empty payload. Only storage I/O errors are returned to the caller.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simaogato/goalfolio-backend/internal/domain"
)

// Read fetches the payload stored under key.
// A key that was never written is reported with ok=false and a nil error.
func Read(ctx context.Context, store domain.KeyValueStore, key string) (data []byte, ok bool, err error) {
	data, err = store.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Decode unmarshals data into dst. On failure it logs a warning, leaves dst
// untouched and returns false.
func Decode(log zerolog.Logger, key string, data []byte, dst any) bool {
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Int("bytes", len(data)).Msg("Failed to decode stored record, keeping in-memory state")
		return false
	}
	return true
}

// Encode serializes v. When v cannot be represented (NaN or infinite numbers)
// the failure is logged and an empty payload is returned instead.
func Encode(log zerolog.Logger, key string, v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to encode record, writing empty payload")
		return []byte{}
	}
	return data
}

// Save encodes v and writes it under key. Only storage errors are returned.
func Save(ctx context.Context, store domain.KeyValueStore, log zerolog.Logger, key string, v any) error {
	if err := store.Set(ctx, key, Encode(log, key, v)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
