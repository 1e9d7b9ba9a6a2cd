package tables

import (
	"context"
)

// Table is a list of records stored as one JSON array.
type Table[E any] struct {
	blob      *Blob[[]E]
	id        func(*E) string
	normalize func(*E)
}

func newTable[E any](b *Blob[[]E], id func(*E) string, normalize func(*E)) *Table[E] {
	if normalize == nil {
		normalize = func(*E) {}
	}
	return &Table[E]{blob: b, id: id, normalize: normalize}
}

func (t *Table[E]) normalizeAll(rows []E) []E {
	if rows == nil {
		return []E{}
	}
	for i := range rows {
		t.normalize(&rows[i])
	}
	return rows
}

// List returns every record, never nil.
func (t *Table[E]) List(ctx context.Context) ([]E, error) {
	rows, err := t.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	return t.normalizeAll(rows), nil
}

// Find returns the first record matching pred, or nil.
func (t *Table[E]) Find(ctx context.Context, pred func(*E) bool) (*E, error) {
	rows, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if pred(&rows[i]) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// Get returns the record with the given primary key, or nil.
func (t *Table[E]) Get(ctx context.Context, id string) (*E, error) {
	return t.Find(ctx, func(e *E) bool { return t.id(e) == id })
}

// Filter returns every record matching pred, never nil.
func (t *Table[E]) Filter(ctx context.Context, pred func(*E) bool) ([]E, error) {
	rows, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []E{}
	for i := range rows {
		if pred(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

// Insert appends the record produced by build. build sees the current rows so
// it can derive identifiers from them.
func (t *Table[E]) Insert(ctx context.Context, build func(rows []E) (E, error)) (*E, error) {
	var created E
	err := t.blob.Mutate(ctx, func(rows *[]E) (bool, error) {
		*rows = t.normalizeAll(*rows)
		rec, err := build(*rows)
		if err != nil {
			return false, err
		}
		t.normalize(&rec)
		*rows = append(*rows, rec)
		created = rec
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies fn to the record with the given key. It returns nil without
// writing when no such record exists.
func (t *Table[E]) Update(ctx context.Context, id string, fn func(*E) error) (*E, error) {
	return t.UpdateWithin(ctx, id, func(_ []E, rec *E) error { return fn(rec) })
}

// UpdateWithin is Update with the full row set visible to fn, for checks
// that span records. rows must not be modified.
func (t *Table[E]) UpdateWithin(ctx context.Context, id string, fn func(rows []E, rec *E) error) (*E, error) {
	var updated *E
	err := t.blob.Mutate(ctx, func(rows *[]E) (bool, error) {
		updated = nil
		*rows = t.normalizeAll(*rows)
		for i := range *rows {
			rec := &(*rows)[i]
			if t.id(rec) != id {
				continue
			}
			if err := fn(*rows, rec); err != nil {
				return false, err
			}
			t.normalize(rec)
			cp := *rec
			updated = &cp
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the record with the given key and reports whether it existed.
func (t *Table[E]) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := t.blob.Mutate(ctx, func(rows *[]E) (bool, error) {
		deleted = false
		kept := (*rows)[:0]
		for _, rec := range *rows {
			if t.id(&rec) == id {
				deleted = true
				continue
			}
			kept = append(kept, rec)
		}
		*rows = kept
		return deleted, nil
	})
	return deleted, err
}
