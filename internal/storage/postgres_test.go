package storage_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weather-widget/internal/storage"
)

// ---- mock Querier ----

type mockQuerier struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	pingErr    error
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}
func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}
func (m *mockQuerier) Ping(_ context.Context) error { return m.pingErr }

// ---- mock pgx.Row ----

type fakeRow struct {
	scanFn func(dest ...any) error
}

func (f *fakeRow) Scan(dest ...any) error { return f.scanFn(dest...) }

// ---- Get ----

func TestPostgresKV_Get_Found(t *testing.T) {
	var gotKey any
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, args ...any) pgx.Row {
			gotKey = args[0]
			return &fakeRow{scanFn: func(dest ...any) error {
				*dest[0].(*string) = `["London"]`
				return nil
			}}
		},
	}

	kv := storage.NewPostgresKVWithQuerier(q)
	val, ok, err := kv.Get(context.Background(), "weatherSearchHistory")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["London"]`, val)
	assert.Equal(t, "weatherSearchHistory", gotKey)
}

func TestPostgresKV_Get_NotFound(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}

	kv := storage.NewPostgresKVWithQuerier(q)
	val, ok, err := kv.Get(context.Background(), "weatherUnits")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestPostgresKV_Get_DBError(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(dest ...any) error { return fmt.Errorf("connection reset") }}
		},
	}

	kv := storage.NewPostgresKVWithQuerier(q)
	_, _, err := kv.Get(context.Background(), "weatherUnits")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying preference")
}

// ---- Set / Delete ----

func TestPostgresKV_Set(t *testing.T) {
	var capturedArgs []any
	q := &mockQuerier{
		execFn: func(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
			capturedArgs = args
			return pgconn.CommandTag{}, nil
		},
	}

	kv := storage.NewPostgresKVWithQuerier(q)
	require.NoError(t, kv.Set(context.Background(), "weatherUnits", "imperial"))
	require.Len(t, capturedArgs, 2)
	assert.Equal(t, "weatherUnits", capturedArgs[0])
	assert.Equal(t, "imperial", capturedArgs[1])
}

func TestPostgresKV_Set_DBError(t *testing.T) {
	q := &mockQuerier{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, fmt.Errorf("db error")
		},
	}

	kv := storage.NewPostgresKVWithQuerier(q)
	err := kv.Set(context.Background(), "weatherUnits", "metric")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upserting preference")
}

func TestPostgresKV_Delete(t *testing.T) {
	var sql string
	q := &mockQuerier{
		execFn: func(_ context.Context, s string, _ ...any) (pgconn.CommandTag, error) {
			sql = s
			return pgconn.CommandTag{}, nil
		},
	}

	kv := storage.NewPostgresKVWithQuerier(q)
	require.NoError(t, kv.Delete(context.Background(), "weatherSearchHistory"))
	assert.Contains(t, sql, "DELETE FROM preferences")
}

func TestPostgresKV_Ping(t *testing.T) {
	kv := storage.NewPostgresKVWithQuerier(&mockQuerier{pingErr: fmt.Errorf("down")})
	require.Error(t, kv.Ping(context.Background()))
}

func TestNewPostgresKV_NotNil(t *testing.T) {
	assert.NotNil(t, storage.NewPostgresKV(nil))
}
