package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/localytics/localytics/domain/restaurant"
)

// Timestamp layouts accepted from providers, tried in order. Epoch
// seconds are handled separately.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Normalize converts a provider record into a domain restaurant. A record
// without an external identifier cannot be keyed for upsert and is
// rejected with ErrMalformedRecord.
func Normalize(rec Record) (restaurant.Restaurant, error) {
	if strings.TrimSpace(rec.ExternalID) == "" {
		return restaurant.Restaurant{}, fmt.Errorf("%w: missing external id", ErrMalformedRecord)
	}
	r := restaurant.New(rec.ExternalID).
		WithName(rec.Name).
		WithAddress(rec.Address).
		WithCity(rec.City).
		WithState(rec.State).
		WithZip(rec.Zip).
		WithCuisine(rec.Cuisine)
	if rec.Latitude != nil && rec.Longitude != nil {
		r = r.WithCoordinates(*rec.Latitude, *rec.Longitude)
	}
	return r, nil
}

// NormalizeReview converts a provider review into a domain review bound
// to the given restaurant. An unparseable timestamp becomes nil rather
// than failing the record.
func NormalizeReview(restaurantID int64, provider string, rr ReviewRecord) restaurant.Review {
	rev := restaurant.NewReview(provider, rr.SourceReviewID, rr.Author, rr.Rating, rr.Text, ParseTimestamp(rr.PostedAt))
	return rev.ForRestaurant(restaurantID)
}

// ParseTimestamp parses a provider timestamp into UTC. It accepts the
// layouts providers are known to emit plus bare epoch seconds, and
// returns nil when the text matches none of them.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.Unix(secs, 0).UTC()
		return &t
	}
	return nil
}

// JoinAddress joins non-empty address fragments with ", ". Adapters use
// it to flatten multi-line provider addresses into one display string.
func JoinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
