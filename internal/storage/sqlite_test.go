package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weather-widget/internal/storage"
)

func TestSQLiteKV_RoundTripSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	kv, err := storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "weatherUnits", "imperial"))
	require.NoError(t, kv.Set(ctx, "weatherUnits", "metric"))
	require.NoError(t, kv.Close())

	reopened, err := storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	val, ok, err := reopened.Get(ctx, "weatherUnits")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "metric", val)
}

func TestSQLiteKV_GetMissAndDelete(t *testing.T) {
	ctx := context.Background()
	kv, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	_, ok, err := kv.Get(ctx, "weatherFavorites")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "weatherFavorites", `["Oslo"]`))
	require.NoError(t, kv.Delete(ctx, "weatherFavorites"))
	require.NoError(t, kv.Delete(ctx, "weatherFavorites"))

	_, ok, err = kv.Get(ctx, "weatherFavorites")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, kv.Ping(ctx))
}

func TestSQLiteKV_ClosedErrors(t *testing.T) {
	ctx := context.Background()
	kv, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	_, _, err = kv.Get(ctx, "weatherUnits")
	require.Error(t, err)
}

func TestOpenSQLite_BadPath(t *testing.T) {
	_, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "prefs.db"))
	require.Error(t, err)
}

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", "v"))
	val, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	require.NoError(t, kv.Delete(ctx, "k"))
	_, ok, _ = kv.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, kv.Ping(ctx))
}
