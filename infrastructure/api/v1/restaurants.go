package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/localytics/localytics/application/service"
	"github.com/localytics/localytics/domain/restaurant"
	"github.com/localytics/localytics/infrastructure/api/middleware"
	"github.com/localytics/localytics/infrastructure/api/v1/dto"
)

// RestaurantsRouter handles restaurant API endpoints.
type RestaurantsRouter struct {
	restaurants *service.Restaurants
	logger      *slog.Logger
}

// NewRestaurantsRouter creates a new RestaurantsRouter.
func NewRestaurantsRouter(restaurants *service.Restaurants, logger *slog.Logger) *RestaurantsRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestaurantsRouter{
		restaurants: restaurants,
		logger:      logger,
	}
}

// Routes returns the chi router for restaurant endpoints.
func (r *RestaurantsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{id}", r.Get)

	return router
}

// List handles GET /api/v1/restaurants with optional city, cuisine,
// limit and offset query parameters.
func (r *RestaurantsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	params := ParseListParams(req)

	found, total, err := r.restaurants.List(ctx, service.RestaurantListParams{
		City:    req.URL.Query().Get("city"),
		Cuisine: req.URL.Query().Get("cuisine"),
		Limit:   params.Limit(),
		Offset:  params.Offset(),
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.RestaurantListResponse{
		Data: restaurantsToDTO(found),
		Meta: dto.ListMeta{
			Total:  total,
			Limit:  params.Limit(),
			Offset: params.Offset(),
		},
	})
}

// Get handles GET /api/v1/restaurants/{id}, returning the restaurant
// with its most recent reviews.
func (r *RestaurantsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorResponse{
			Error:  "Bad Request",
			Detail: "id must be an integer",
		})
		return
	}

	found, reviews, err := r.restaurants.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.RestaurantResponse{
		Data:    restaurantToDTO(found),
		Reviews: reviewsToDTO(reviews),
	})
}

func restaurantToDTO(r restaurant.Restaurant) dto.Restaurant {
	return dto.Restaurant{
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

func restaurantsToDTO(items []restaurant.Restaurant) []dto.Restaurant {
	out := make([]dto.Restaurant, len(items))
	for i, r := range items {
		out[i] = restaurantToDTO(r)
	}
	return out
}

func reviewsToDTO(items []restaurant.Review) []dto.Review {
	out := make([]dto.Review, len(items))
	for i, r := range items {
		out[i] = dto.Review{
			ID:             r.ID(),
			Source:         r.Source(),
			SourceReviewID: r.SourceReviewID(),
			Author:         r.Author(),
			Rating:         r.Rating(),
			Text:           r.Text(),
			CreatedAt:      r.PostedAt(),
		}
	}
	return out
}
