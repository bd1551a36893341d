package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_MissingKey(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), domain.KeySavedPositions)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, domain.KeySavedPositions, []byte(`[]`)))
	require.NoError(t, store.Set(ctx, domain.KeySavedPositions, []byte(`[{"id":"x"}]`)))

	got, err := store.Get(ctx, domain.KeySavedPositions)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"x"}]`, string(got))

	onDisk, err := os.ReadFile(filepath.Join(dir, "savedPositions.json"))
	require.NoError(t, err)
	assert.Equal(t, got, onDisk)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, domain.KeySavedTickers, []byte(`[{"symbol":"VOO"}]`)))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, domain.KeySavedTickers)

	require.NoError(t, err)
	assert.Equal(t, `[{"symbol":"VOO"}]`, string(got))
}

func TestStore_EmptyValueIsNotMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, domain.KeyDailyMarketValues, []byte{}))

	got, err := store.Get(ctx, domain.KeyDailyMarketValues)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_KeyCannotEscapeDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "inner"))
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "../outside", []byte(`x`)))

	_, err = os.Stat(filepath.Join(dir, "outside.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewStore_RequiresDir(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}
