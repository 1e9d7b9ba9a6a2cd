// Package sqlite provides a SQLite-backed implementation of storage.KeyValue.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/slidemaker/internal/storage"
)

// Ensure SQLiteStore implements storage.KeyValue
var _ storage.KeyValue = (*SQLiteStore)(nil)

// SQLiteStore implements storage.KeyValue using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; extra connections only add lock contention.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an already opened and migrated database.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get retrieves the entry stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (storage.Entry, error) {
	var entry storage.Entry
	err := s.db.QueryRowContext(ctx,
		"SELECT value, version FROM kv WHERE key = ?",
		key,
	).Scan(&entry.Value, &entry.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Entry{}, storage.ErrKeyNotFound
	}
	if err != nil {
		return storage.Entry{}, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return entry, nil
}

// Set writes value under key, creating the row or bumping its version.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = kv.version + 1, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// CompareAndSwap writes value only when the stored version matches.
func (s *SQLiteStore) CompareAndSwap(ctx context.Context, key, value string, version int64) error {
	var (
		res sql.Result
		err error
	)
	if version == 0 {
		res, err = s.db.ExecContext(ctx,
			"INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, 1, ?) ON CONFLICT(key) DO NOTHING",
			key, value, time.Now().UnixMilli(),
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			"UPDATE kv SET value = ?, version = version + 1, updated_at = ? WHERE key = ? AND version = ?",
			value, time.Now().UnixMilli(), key, version,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to swap %s: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", key, err)
	}
	if n == 0 {
		return storage.ErrVersionConflict
	}
	return nil
}

// Remove deletes key.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
