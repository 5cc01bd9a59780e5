package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// WithTransactionResult runs fn inside a transaction and returns its
// result. The transaction commits when fn succeeds; any error rolls it
// back and the zero value is returned.
func WithTransactionResult[T any](ctx context.Context, db Database, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var zero T

	tx := db.Session(ctx).Begin()
	if tx.Error != nil {
		return zero, fmt.Errorf("begin transaction: %w", tx.Error)
	}

	result, err := fn(tx)
	if err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return zero, errors.Join(err, fmt.Errorf("rollback transaction: %w", rbErr))
		}
		return zero, err
	}

	if err := tx.Commit().Error; err != nil {
		return zero, fmt.Errorf("commit transaction: %w", err)
	}
	return result, nil
}
