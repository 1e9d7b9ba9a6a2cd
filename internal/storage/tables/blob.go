// Package tables implements storage.Store on top of a storage.KeyValue.
//
// Each table is one JSON document. Every mutation re-reads the document,
// changes it in memory and writes the whole document back with a
// compare-and-swap on the document version, retrying on conflict. Concurrent
// writers therefore no longer silently overwrite each other at table
// granularity; one of them retries against the fresh document instead.
package tables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/slidemaker/internal/storage"
)

// DefaultRetries is the number of extra attempts after a version conflict.
const DefaultRetries = 5

// Observer receives table-level events. metrics.Metrics implements it.
type Observer interface {
	TableWrite(table string)
	TableConflict(table string)
	TableDecodeFailure(table string)
}

type nopObserver struct{}

func (nopObserver) TableWrite(string)         {}
func (nopObserver) TableConflict(string)      {}
func (nopObserver) TableDecodeFailure(string) {}

type blobConfig struct {
	retries  int
	observer Observer
	logger   *slog.Logger
}

// Blob is a single JSON document stored under one key.
type Blob[T any] struct {
	kv  storage.KeyValue
	key string
	cfg blobConfig
}

// NewBlob creates a Blob over key. WithClock does not apply to blobs.
func NewBlob[T any](kv storage.KeyValue, key string, opts ...Option) *Blob[T] {
	return newBlob[T](kv, key, newOptions(opts).blob)
}

func newBlob[T any](kv storage.KeyValue, key string, cfg blobConfig) *Blob[T] {
	return &Blob[T]{kv: kv, key: key, cfg: cfg}
}

// load returns the decoded document and its version. A missing key yields the
// zero value and version 0. A document that fails to decode is treated as the
// zero value; its version is kept so the next write replaces it.
func (b *Blob[T]) load(ctx context.Context) (T, int64, error) {
	var v T
	entry, err := b.kv.Get(ctx, b.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return v, 0, nil
	}
	if err != nil {
		return v, 0, fmt.Errorf("failed to read %s: %w", b.key, err)
	}

	if err := json.Unmarshal([]byte(entry.Value), &v); err != nil {
		b.cfg.logger.Warn("Discarding malformed table document",
			"table", b.key,
			"version", entry.Version,
			"error", err,
		)
		b.cfg.observer.TableDecodeFailure(b.key)
		var zero T
		return zero, entry.Version, nil
	}
	return v, entry.Version, nil
}

// Load returns the current document.
func (b *Blob[T]) Load(ctx context.Context) (T, error) {
	v, _, err := b.load(ctx)
	return v, err
}

// Mutate runs fn against a fresh copy of the document and writes it back if fn
// reports a change. fn may run more than once when writers race, so it must
// derive everything it returns from its argument.
func (b *Blob[T]) Mutate(ctx context.Context, fn func(*T) (bool, error)) error {
	for attempt := 0; attempt <= b.cfg.retries; attempt++ {
		v, version, err := b.load(ctx)
		if err != nil {
			return err
		}

		changed, err := fn(&v)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", b.key, err)
		}

		err = b.kv.CompareAndSwap(ctx, b.key, string(data), version)
		if err == nil {
			b.cfg.observer.TableWrite(b.key)
			return nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return fmt.Errorf("failed to write %s: %w", b.key, err)
		}

		b.cfg.observer.TableConflict(b.key)
		b.cfg.logger.Warn("Table write conflict, retrying",
			"table", b.key,
			"attempt", attempt+1,
		)
	}
	return fmt.Errorf("failed to write %s after %d attempts: %w", b.key, b.cfg.retries+1, storage.ErrVersionConflict)
}
