package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localytics/localytics/domain/restaurant"
)

const defaultRecentReviews = 20

// RestaurantListParams configures restaurant listing.
type RestaurantListParams struct {
	City    string
	Cuisine string
	Limit   int
	Offset  int
}

// Restaurants serves read queries over stored restaurants and reviews.
type Restaurants struct {
	restaurants restaurant.Store
	reviews     restaurant.ReviewStore
	logger      *slog.Logger
}

// NewRestaurants creates a Restaurants service.
func NewRestaurants(restaurants restaurant.Store, reviews restaurant.ReviewStore, logger *slog.Logger) *Restaurants {
	if logger == nil {
		logger = slog.Default()
	}
	return &Restaurants{
		restaurants: restaurants,
		reviews:     reviews,
		logger:      logger,
	}
}

// List returns restaurants matching the filter, plus the total count for
// the same filter ignoring pagination.
func (s *Restaurants) List(ctx context.Context, params RestaurantListParams) ([]restaurant.Restaurant, int64, error) {
	var filters []restaurant.Option
	if params.City != "" {
		filters = append(filters, restaurant.WithCity(params.City))
	}
	if params.Cuisine != "" {
		filters = append(filters, restaurant.WithCuisine(params.Cuisine))
	}

	total, err := s.restaurants.Count(ctx, filters...)
	if err != nil {
		return nil, 0, fmt.Errorf("count restaurants: %w", err)
	}

	opts := append([]restaurant.Option{}, filters...)
	if params.Limit > 0 {
		opts = append(opts, restaurant.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, restaurant.WithOffset(params.Offset))
	}

	found, err := s.restaurants.Find(ctx, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("list restaurants: %w", err)
	}
	return found, total, nil
}

// Get returns one restaurant with its most recent reviews.
func (s *Restaurants) Get(ctx context.Context, id int64) (restaurant.Restaurant, []restaurant.Review, error) {
	r, err := s.restaurants.FindByID(ctx, id)
	if err != nil {
		return restaurant.Restaurant{}, nil, err
	}

	reviews, err := s.RecentReviews(ctx, id, defaultRecentReviews)
	if err != nil {
		return restaurant.Restaurant{}, nil, err
	}
	return r, reviews, nil
}

// RecentReviews returns up to n reviews for a restaurant, newest first.
func (s *Restaurants) RecentReviews(ctx context.Context, id int64, n int) ([]restaurant.Review, error) {
	if n <= 0 {
		n = defaultRecentReviews
	}
	reviews, err := s.reviews.Find(ctx,
		restaurant.WithRestaurantID(id),
		restaurant.WithNewestFirst(),
		restaurant.WithLimit(n),
	)
	if err != nil {
		return nil, fmt.Errorf("load reviews for restaurant %d: %w", id, err)
	}
	return reviews, nil
}
