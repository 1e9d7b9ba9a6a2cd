// Package postgres provides a PostgreSQL-backed storage.KeyValue, for
// deployments where several server processes share one store.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/slidemaker/internal/storage"
)

var _ storage.KeyValue = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    version BIGINT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// db is the subset of *pgxpool.Pool the store uses.
type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implements storage.KeyValue on a pgx connection pool.
type Store struct {
	db   db
	pool *pgxpool.Pool
}

// New connects to dsn and ensures the kv table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: pool, pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (storage.Entry, error) {
	var entry storage.Entry
	err := s.db.QueryRow(ctx, "SELECT value, version FROM kv WHERE key = $1", key).
		Scan(&entry.Value, &entry.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Entry{}, storage.ErrKeyNotFound
		}
		return storage.Entry{}, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return entry, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO kv (key, value, version) VALUES ($1, $2, 1)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, version = kv.version + 1, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key, value string, version int64) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if version == 0 {
		tag, err = s.db.Exec(ctx,
			"INSERT INTO kv (key, value, version) VALUES ($1, $2, 1) ON CONFLICT (key) DO NOTHING",
			key, value,
		)
	} else {
		tag, err = s.db.Exec(ctx,
			"UPDATE kv SET value = $1, version = version + 1, updated_at = now() WHERE key = $2 AND version = $3",
			value, key, version,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to swap %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrVersionConflict
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM kv WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
