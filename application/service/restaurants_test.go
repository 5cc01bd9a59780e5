package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/localytics/localytics/application/service"
	"github.com/localytics/localytics/domain/restaurant"
	"github.com/localytics/localytics/infrastructure/persistence"
	"github.com/localytics/localytics/internal/database"
)

func newRestaurantsService(t *testing.T) (*service.Restaurants, persistence.RestaurantStore, persistence.ReviewStore) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.AutoMigrate(ctx, db))

	restaurants := persistence.NewRestaurantStore(db)
	reviews := persistence.NewReviewStore(db)
	return service.NewRestaurants(restaurants, reviews, nil), restaurants, reviews
}

func TestRestaurantsList_FiltersAndTotal(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newRestaurantsService(t)

	for _, seed := range []struct{ ext, name, city string }{
		{"a", "Alpha", "Springfield"},
		{"b", "Beta", "Springfield"},
		{"c", "Gamma", "Chicago"},
	} {
		_, err := store.Save(ctx, restaurant.New(seed.ext).WithName(seed.name).WithCity(seed.city))
		require.NoError(t, err)
	}

	found, total, err := svc.List(ctx, service.RestaurantListParams{City: "Springfield", Limit: 1})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, int64(2), total)
}

func TestRestaurantsRecentReviews_NewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, store, reviews := newRestaurantsService(t)

	saved, err := store.Save(ctx, restaurant.New("a").WithName("Alpha"))
	require.NoError(t, err)

	base := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	var batch []restaurant.Review
	for i := 0; i < 3; i++ {
		posted := base.AddDate(0, 0, i)
		batch = append(batch, restaurant.NewReview("yelp", string(rune('a'+i)), "Pat", 4, "ok", &posted).ForRestaurant(saved.ID()))
	}
	_, err = reviews.SaveAll(ctx, batch)
	require.NoError(t, err)

	recent, err := svc.RecentReviews(ctx, saved.ID(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, base.AddDate(0, 0, 2), recent[0].PostedAt().UTC())
	require.Equal(t, base.AddDate(0, 0, 1), recent[1].PostedAt().UTC())
}
