package store

import (
	"context"

	"github.com/timshannon/bolthold"

	"github.com/amaumene/dono/internal/apperrors"
)

// boltTable stores each record type in its own bolthold bucket, keyed by
// the bucket sequence.
type boltTable[T any] struct {
	store *bolthold.Store
}

func (t *boltTable[T]) Append(_ context.Context, rec *T) error {
	if err := t.store.Insert(bolthold.NextSequence(), rec); err != nil {
		return &apperrors.StorageError{Op: "append", Err: err}
	}
	return nil
}

func (t *boltTable[T]) Latest(_ context.Context, n int) ([]T, error) {
	query := (&bolthold.Query{}).SortBy("Timestamp", "ID").Reverse()
	if n > 0 {
		query = query.Limit(n)
	}

	var records []T
	if err := t.store.Find(&records, query); err != nil {
		return nil, &apperrors.StorageError{Op: "find", Err: err}
	}
	return records, nil
}

func (t *boltTable[T]) Count(_ context.Context) (int, error) {
	var zero T
	count, err := t.store.Count(&zero, nil)
	if err != nil {
		return 0, &apperrors.StorageError{Op: "count", Err: err}
	}
	return int(count), nil
}
