package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned by KeyValue.Get for absent keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrVersionConflict is returned by CompareAndSwap when the stored version
	// no longer matches the expected one.
	ErrVersionConflict = errors.New("version conflict")
)

// Entry is a stored value and its write version.
// Versions start at 1 and increase by one on every successful write.
type Entry struct {
	Value   string
	Version int64
}

// KeyValue is a persistent string store addressed by key, the equivalent of a
// browser's per-origin local storage with an added version per key.
type KeyValue interface {
	// Get returns the entry for key or ErrKeyNotFound.
	Get(ctx context.Context, key string) (Entry, error)

	// Set writes value unconditionally.
	Set(ctx context.Context, key, value string) error

	// CompareAndSwap writes value only if the stored version equals version.
	// Version 0 means the key must not exist yet.
	// Returns ErrVersionConflict on mismatch.
	CompareAndSwap(ctx context.Context, key, value string, version int64) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// GetJSON decodes the value stored under key into dst.
// It reports false without error when the key is absent.
func GetJSON(ctx context.Context, kv KeyValue, key string, dst any) (bool, error) {
	entry, err := kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(entry.Value), dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key unconditionally.
func SetJSON(ctx context.Context, kv KeyValue, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}
