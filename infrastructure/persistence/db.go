// Package persistence provides database storage implementations.
package persistence

import (
	"context"

	"github.com/localytics/localytics/internal/database"
)

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(ctx context.Context, db database.Database) error {
	return db.Session(ctx).AutoMigrate(
		&RestaurantModel{},
		&ReviewModel{},
	)
}
