package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/localytics/localytics/domain/restaurant"
	"github.com/localytics/localytics/internal/database"
)

// ReviewStore implements restaurant.ReviewStore using GORM.
type ReviewStore struct {
	database.Repository[restaurant.Review, ReviewModel]
}

// NewReviewStore creates a new ReviewStore.
func NewReviewStore(db database.Database) ReviewStore {
	return ReviewStore{
		Repository: database.NewRepository[restaurant.Review, ReviewModel](db, ReviewMapper{}, "review"),
	}
}

// SaveAll batch-inserts reviews, silently skipping rows that collide with
// the (restaurant_id, source, source_review_id) dedup index. It returns
// the number of rows actually inserted.
func (s ReviewStore) SaveAll(ctx context.Context, reviews []restaurant.Review) (int64, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	models := make([]ReviewModel, len(reviews))
	for i, r := range reviews {
		models[i] = s.Mapper().ToModel(r)
	}

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "source"}, {Name: "source_review_id"}},
		DoNothing: true,
	}).Create(&models)
	if result.Error != nil {
		return 0, fmt.Errorf("save reviews: %w", result.Error)
	}

	return result.RowsAffected, nil
}
