package persistence

import (
	"github.com/localytics/localytics/domain/restaurant"
)

// RestaurantMapper maps between domain Restaurant and RestaurantModel.
type RestaurantMapper struct{}

// ToDomain converts a RestaurantModel to a domain Restaurant.
func (m RestaurantMapper) ToDomain(e RestaurantModel) restaurant.Restaurant {
	return restaurant.Reconstruct(
		e.ID,
		e.ExternalID,
		e.Name,
		e.Address,
		e.City,
		e.State,
		e.Zip,
		e.Cuisine,
		e.Lat,
		e.Lng,
	)
}

// ToModel converts a domain Restaurant to a RestaurantModel.
func (m RestaurantMapper) ToModel(r restaurant.Restaurant) RestaurantModel {
	return RestaurantModel{
		ID:         r.ID(),
		ExternalID: r.ExternalID(),
		Name:       r.Name(),
		Address:    r.Address(),
		City:       r.City(),
		State:      r.State(),
		Zip:        r.Zip(),
		Cuisine:    r.Cuisine(),
		Lat:        r.Lat(),
		Lng:        r.Lng(),
	}
}

// ReviewMapper maps between domain Review and ReviewModel.
type ReviewMapper struct{}

// ToDomain converts a ReviewModel to a domain Review.
func (m ReviewMapper) ToDomain(e ReviewModel) restaurant.Review {
	var sourceReviewID string
	if e.SourceReviewID != nil {
		sourceReviewID = *e.SourceReviewID
	}
	return restaurant.ReconstructReview(
		e.ID,
		e.RestaurantID,
		e.Source,
		sourceReviewID,
		e.Author,
		e.Rating,
		e.Text,
		e.PostedAt,
	)
}

// ToModel converts a domain Review to a ReviewModel. An empty source
// review id becomes NULL so the dedup index never matches it.
func (m ReviewMapper) ToModel(r restaurant.Review) ReviewModel {
	var sourceReviewID *string
	if id := r.SourceReviewID(); id != "" {
		sourceReviewID = &id
	}
	return ReviewModel{
		ID:             r.ID(),
		RestaurantID:   r.RestaurantID(),
		Source:         r.Source(),
		SourceReviewID: sourceReviewID,
		Author:         r.Author(),
		Rating:         r.Rating(),
		Text:           r.Text(),
		PostedAt:       r.PostedAt(),
	}
}
