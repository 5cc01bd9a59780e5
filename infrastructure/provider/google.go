package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/localytics/localytics/domain/source"
)

const (
	googleDefaultBaseURL = "https://maps.googleapis.com"
	googlePageLimit      = 20

	// A next_page_token needs a short server-side settle before it is
	// accepted; requesting too early yields INVALID_REQUEST.
	googlePageDelay = 2 * time.Second

	googleDetailFields = "place_id,name,formatted_address,address_components,geometry,types,reviews"
)

// GoogleSource implements source.Source against the Google Places API.
// Text search pages with an opaque token and returns place ids only;
// FetchDetail resolves each id through the details endpoint.
type GoogleSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// GoogleOption is a functional option for GoogleSource.
type GoogleOption func(*GoogleSource)

// WithGoogleBaseURL sets the base URL (for testing or proxies).
func WithGoogleBaseURL(url string) GoogleOption {
	return func(s *GoogleSource) { s.baseURL = url }
}

// WithGoogleHTTPClient sets the HTTP client.
func WithGoogleHTTPClient(c *http.Client) GoogleOption {
	return func(s *GoogleSource) { s.httpClient = c }
}

// NewGoogleSource creates a new GoogleSource.
func NewGoogleSource(apiKey string, opts ...GoogleOption) *GoogleSource {
	s := &GoogleSource{
		apiKey:  apiKey,
		baseURL: googleDefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns "google".
func (s *GoogleSource) Provider() string { return "google" }

// PageLimit returns the text search page cap.
func (s *GoogleSource) PageLimit() int { return googlePageLimit }

// PageDelay returns the continuation token settle delay.
func (s *GoogleSource) PageDelay() time.Duration { return googlePageDelay }

type googleSearchResponse struct {
	Status        string            `json:"status"`
	ErrorMessage  string            `json:"error_message"`
	Results       []googleSearchHit `json:"results"`
	NextPageToken string            `json:"next_page_token"`
}

type googleSearchHit struct {
	PlaceID string `json:"place_id"`
}

type googleDetailsResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Result       googlePlace `json:"result"`
}

type googlePlace struct {
	PlaceID           string                   `json:"place_id"`
	Name              string                   `json:"name"`
	FormattedAddress  string                   `json:"formatted_address"`
	AddressComponents []googleAddressComponent `json:"address_components"`
	Geometry          *googleGeometry          `json:"geometry"`
	Types             []string                 `json:"types"`
	Reviews           []googleReview           `json:"reviews"`
}

type googleAddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type googleGeometry struct {
	Location struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	} `json:"location"`
}

type googleReview struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	// Epoch seconds. A pointer keeps an absent time distinguishable
	// from a genuine 1970 timestamp.
	Time *int64 `json:"time"`
}

// Search fetches one token page of place ids. An absent next_page_token
// marks the source exhausted.
func (s *GoogleSource) Search(ctx context.Context, query source.Query, cursor source.Cursor, _ int) (source.Page, error) {
	if cursor.AtEnd() {
		return source.Page{Next: source.End()}, nil
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	if token := cursor.Token(); token != "" {
		params.Set("pagetoken", token)
	} else {
		params.Set("query", query.Text)
	}

	var resp googleSearchResponse
	endpoint := s.baseURL + "/maps/api/place/textsearch/json?" + params.Encode()
	if err := getJSON(ctx, s.httpClient, endpoint, nil, &resp); err != nil {
		return source.Page{}, fmt.Errorf("google search: %w", err)
	}
	if err := classifyGoogleStatus(resp.Status, resp.ErrorMessage); err != nil {
		return source.Page{}, fmt.Errorf("google search: %w", err)
	}

	stubs := make([]source.Stub, len(resp.Results))
	for i, hit := range resp.Results {
		stubs[i] = source.Stub{ID: hit.PlaceID}
	}

	next := source.End()
	if resp.NextPageToken != "" {
		next = source.TokenCursor(resp.NextPageToken)
	}
	return source.Page{Stubs: stubs, Next: next}, nil
}

// FetchDetail resolves a place id into a full record with its bundled
// reviews. Google exposes no stable review ids, so SourceReviewID stays
// empty; review times arrive as epoch seconds.
func (s *GoogleSource) FetchDetail(ctx context.Context, stub source.Stub) (source.Record, error) {
	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("place_id", stub.ID)
	params.Set("fields", googleDetailFields)

	var resp googleDetailsResponse
	endpoint := s.baseURL + "/maps/api/place/details/json?" + params.Encode()
	if err := getJSON(ctx, s.httpClient, endpoint, nil, &resp); err != nil {
		return source.Record{}, fmt.Errorf("google details: %w", err)
	}
	if err := classifyGoogleStatus(resp.Status, resp.ErrorMessage); err != nil {
		return source.Record{}, fmt.Errorf("google details: %w", err)
	}

	return googleRecord(stub.ID, resp.Result), nil
}

// classifyGoogleStatus maps a Places API status to the error taxonomy.
// ZERO_RESULTS is success with an empty result set.
func classifyGoogleStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS", "":
		return nil
	case "OVER_QUERY_LIMIT", "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", source.ErrThrottled, status)
	case "UNKNOWN_ERROR", "INVALID_REQUEST":
		// INVALID_REQUEST usually means a continuation token that has
		// not settled yet; retry after the page delay.
		return fmt.Errorf("%w: %s", source.ErrTransient, status)
	default:
		if message != "" {
			return fmt.Errorf("status %s: %s", status, message)
		}
		return fmt.Errorf("status %s", status)
	}
}

func googleRecord(placeID string, p googlePlace) source.Record {
	rec := source.Record{
		ExternalID: p.PlaceID,
		Name:       p.Name,
		Address:    p.FormattedAddress,
	}
	if rec.ExternalID == "" {
		rec.ExternalID = placeID
	}

	for _, c := range p.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "locality":
				rec.City = c.LongName
			case "administrative_area_level_1":
				rec.State = c.ShortName
			case "postal_code":
				rec.Zip = c.LongName
			}
		}
	}

	rec.Cuisine = cuisineFromTypes(p.Types)

	if p.Geometry != nil {
		rec.Latitude = p.Geometry.Location.Lat
		rec.Longitude = p.Geometry.Location.Lng
	}

	rec.Reviews = make([]source.ReviewRecord, len(p.Reviews))
	for i, r := range p.Reviews {
		rr := source.ReviewRecord{
			Author: r.AuthorName,
			Rating: r.Rating,
			Text:   r.Text,
		}
		if r.Time != nil {
			rr.PostedAt = strconv.FormatInt(*r.Time, 10)
		}
		rec.Reviews[i] = rr
	}
	return rec
}

// cuisineFromTypes picks the first place type that carries descriptive
// value, skipping the generic tags every place carries.
func cuisineFromTypes(types []string) string {
	for _, t := range types {
		switch t {
		case "point_of_interest", "establishment", "food":
			continue
		}
		return t
	}
	return ""
}
