package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localytics/localytics/domain/restaurant"
	"github.com/localytics/localytics/internal/database"
)

// restaurantColumns are the columns refreshed when an upsert hits an
// existing external_id.
var restaurantColumns = []string{"name", "address", "city", "state", "zip", "cuisine", "lat", "lng"}

// RestaurantStore implements restaurant.Store using GORM.
type RestaurantStore struct {
	database.Repository[restaurant.Restaurant, RestaurantModel]
	db database.Database
}

// NewRestaurantStore creates a new RestaurantStore.
func NewRestaurantStore(db database.Database) RestaurantStore {
	return RestaurantStore{
		Repository: database.NewRepository[restaurant.Restaurant, RestaurantModel](db, RestaurantMapper{}, "restaurant"),
		db:         db,
	}
}

// Save upserts a restaurant keyed on external_id. A conflicting row has
// its descriptive columns refreshed; the surrogate id never changes. The
// returned restaurant always carries its database id.
func (s RestaurantStore) Save(ctx context.Context, r restaurant.Restaurant) (restaurant.Restaurant, error) {
	model := s.Mapper().ToModel(r)

	saved, err := database.WithTransactionResult(ctx, s.db, func(tx *gorm.DB) (RestaurantModel, error) {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(restaurantColumns),
		}).Create(&model)
		if result.Error != nil {
			return RestaurantModel{}, result.Error
		}

		// On conflict some dialects do not report the existing row's id
		// back into the model. Read it back by its natural key.
		if model.ID == 0 {
			var existing RestaurantModel
			if err := tx.Where("external_id = ?", model.ExternalID).First(&existing).Error; err != nil {
				return RestaurantModel{}, err
			}
			return existing, nil
		}
		return model, nil
	})
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("save restaurant: %w", err)
	}

	return s.Mapper().ToDomain(saved), nil
}

// FindByID retrieves a restaurant by its database id.
func (s RestaurantStore) FindByID(ctx context.Context, id int64) (restaurant.Restaurant, error) {
	found, err := s.FindOne(ctx, restaurant.WithCondition("id", id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return restaurant.Restaurant{}, err
		}
		return restaurant.Restaurant{}, fmt.Errorf("find restaurant by id: %w", err)
	}
	return found, nil
}
