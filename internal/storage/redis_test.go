package storage_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weather-widget/internal/storage"
)

func newTestRedisKV(t *testing.T) (*storage.RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return storage.NewRedisKV(client), mr
}

func TestRedisKV_SetAndGet(t *testing.T) {
	kv, mr := newTestRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "weatherUnits", "imperial"))

	val, ok, err := kv.Get(ctx, "weatherUnits")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "imperial", val)

	raw, err := mr.Get("weather-widget:weatherUnits")
	require.NoError(t, err)
	assert.Equal(t, "imperial", raw)
	assert.Zero(t, mr.TTL("weather-widget:weatherUnits"), "preferences must not expire")
}

func TestRedisKV_Get_Miss(t *testing.T) {
	kv, _ := newTestRedisKV(t)

	val, ok, err := kv.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestRedisKV_Delete(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "weatherFavorites", `["Paris"]`))
	require.NoError(t, kv.Delete(ctx, "weatherFavorites"))

	_, ok, err := kv.Get(ctx, "weatherFavorites")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a key that doesn't exist should not error.
	require.NoError(t, kv.Delete(ctx, "ghost"))
}

func TestRedisKV_ServerDown(t *testing.T) {
	kv, mr := newTestRedisKV(t)
	mr.Close()

	_, _, err := kv.Get(context.Background(), "weatherUnits")
	require.Error(t, err)
	require.Error(t, kv.Set(context.Background(), "weatherUnits", "metric"))
	require.Error(t, kv.Ping(context.Background()))
}

func TestConnectRedis_InvalidURL(t *testing.T) {
	_, err := storage.ConnectRedis(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestConnectRedis_UnreachableServer(t *testing.T) {
	_, err := storage.ConnectRedis(context.Background(), "redis://localhost:19999")
	require.Error(t, err)
}

func TestConnectRedis_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := storage.ConnectRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()
}
