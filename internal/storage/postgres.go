package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier abstracts the subset of pgxpool.Pool used by PostgresKV.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PostgresKV stores preference values in the preferences table.
type PostgresKV struct {
	q Querier
}

// NewPostgresKV constructs a PostgresKV backed by the given pool.
func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{q: pool}
}

// NewPostgresKVWithQuerier constructs a PostgresKV with a custom Querier (for tests).
func NewPostgresKVWithQuerier(q Querier) *PostgresKV {
	return &PostgresKV{q: q}
}

// Get returns the value stored under key. ok is false when the key is absent.
func (p *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM preferences WHERE key = $1`

	var value string
	if err := p.q.QueryRow(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("querying preference %s: %w", key, err)
	}

	return value, true, nil
}

// Set inserts or replaces the value stored under key.
func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value      = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := p.q.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("upserting preference %s: %w", key, err)
	}

	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM preferences WHERE key = $1`

	if _, err := p.q.Exec(ctx, q, key); err != nil {
		return fmt.Errorf("deleting preference %s: %w", key, err)
	}

	return nil
}

// Ping checks database connectivity.
func (p *PostgresKV) Ping(ctx context.Context) error {
	return p.q.Ping(ctx)
}
