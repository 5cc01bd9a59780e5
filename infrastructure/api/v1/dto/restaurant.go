// Package dto defines the v1 API response shapes.
package dto

import "time"

// Restaurant is the API representation of a stored restaurant.
type Restaurant struct {
	ID         int64    `json:"id"`
	ExternalID string   `json:"external_id"`
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	Zip        string   `json:"zip,omitempty"`
	Cuisine    string   `json:"cuisine,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// Review is the API representation of a stored review.
type Review struct {
	ID             int64      `json:"id"`
	Source         string     `json:"source"`
	SourceReviewID string     `json:"source_review_id,omitempty"`
	Author         string     `json:"author,omitempty"`
	Rating         float64    `json:"rating"`
	Text           string     `json:"text,omitempty"`
	CreatedAt      *time.Time `json:"created_at"`
}

// RestaurantListResponse is the body of GET /restaurants.
type RestaurantListResponse struct {
	Data []Restaurant `json:"data"`
	Meta ListMeta     `json:"meta"`
}

// RestaurantResponse is the body of GET /restaurants/{id}.
type RestaurantResponse struct {
	Data    Restaurant `json:"data"`
	Reviews []Review   `json:"reviews"`
}

// ListMeta carries pagination metadata.
type ListMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
