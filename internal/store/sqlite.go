package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/amaumene/dono/internal/apperrors"
)

// sqlTable maps each record type to its own table via gorm
type sqlTable[T any] struct {
	db *gorm.DB
}

func (t *sqlTable[T]) Append(ctx context.Context, rec *T) error {
	if err := t.db.WithContext(ctx).Create(rec).Error; err != nil {
		return &apperrors.StorageError{Op: "append", Err: err}
	}
	return nil
}

func (t *sqlTable[T]) Latest(ctx context.Context, n int) ([]T, error) {
	query := t.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC")
	if n > 0 {
		query = query.Limit(n)
	}

	var records []T
	if err := query.Find(&records).Error; err != nil {
		return nil, &apperrors.StorageError{Op: "find", Err: err}
	}
	return records, nil
}

func (t *sqlTable[T]) Count(ctx context.Context) (int, error) {
	var count int64
	if err := t.db.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		return 0, &apperrors.StorageError{Op: "count", Err: err}
	}
	return int(count), nil
}
