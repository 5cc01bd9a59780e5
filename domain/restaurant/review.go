package restaurant

import "time"

// Review is a single provider review attached to a Restaurant. Reviews are
// append-only; the tuple (restaurant_id, source, source_review_id) is unique
// when the provider review id is present.
type Review struct {
	id             int64
	restaurantID   int64
	source         string
	sourceReviewID string
	author         string
	rating         float64
	text           string
	postedAt       *time.Time
}

// NewReview creates a Review for the given provider tag. sourceReviewID may
// be empty when the provider does not expose review identifiers; such
// reviews are stored but never deduplicated against each other.
func NewReview(source, sourceReviewID, author string, rating float64, text string, postedAt *time.Time) Review {
	return Review{
		source:         source,
		sourceReviewID: sourceReviewID,
		author:         author,
		rating:         rating,
		text:           text,
		postedAt:       postedAt,
	}
}

// ReconstructReview rebuilds a Review from stored state.
func ReconstructReview(id, restaurantID int64, source, sourceReviewID, author string, rating float64, text string, postedAt *time.Time) Review {
	return Review{
		id:             id,
		restaurantID:   restaurantID,
		source:         source,
		sourceReviewID: sourceReviewID,
		author:         author,
		rating:         rating,
		text:           text,
		postedAt:       postedAt,
	}
}

// ID returns the store-assigned surrogate identifier (0 if unsaved).
func (r Review) ID() int64 { return r.id }

// RestaurantID returns the owning restaurant id.
func (r Review) RestaurantID() int64 { return r.restaurantID }

// Source returns the provider tag (e.g. "yelp", "google").
func (r Review) Source() string { return r.source }

// SourceReviewID returns the provider review id ("" when the provider does
// not expose one).
func (r Review) SourceReviewID() string { return r.sourceReviewID }

// Author returns the review author name.
func (r Review) Author() string { return r.author }

// Rating returns the review rating.
func (r Review) Rating() float64 { return r.rating }

// Text returns the review text.
func (r Review) Text() string { return r.text }

// PostedAt returns when the review was written, or nil when the provider
// timestamp was absent or unparseable.
func (r Review) PostedAt() *time.Time { return r.postedAt }

// ForRestaurant returns a copy bound to the given restaurant id.
func (r Review) ForRestaurant(restaurantID int64) Review {
	r.restaurantID = restaurantID
	return r
}
