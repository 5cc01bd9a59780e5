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
	yelpDefaultBaseURL = "https://api.yelp.com"
	yelpPageLimit      = 50

	// The business reviews endpoint returns at most three reviews
	// regardless of the requested limit.
	yelpReviewLimit = 3
)

// YelpSource implements source.Source against the Yelp Fusion API.
// Search pages with a numeric offset; each hit already carries the full
// business payload, so FetchDetail only attaches the reviews.
type YelpSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// YelpOption is a functional option for YelpSource.
type YelpOption func(*YelpSource)

// WithYelpBaseURL sets the base URL (for testing or proxies).
func WithYelpBaseURL(url string) YelpOption {
	return func(s *YelpSource) { s.baseURL = url }
}

// WithYelpHTTPClient sets the HTTP client.
func WithYelpHTTPClient(c *http.Client) YelpOption {
	return func(s *YelpSource) { s.httpClient = c }
}

// NewYelpSource creates a new YelpSource.
func NewYelpSource(apiKey string, opts ...YelpOption) *YelpSource {
	s := &YelpSource{
		apiKey:  apiKey,
		baseURL: yelpDefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns "yelp".
func (s *YelpSource) Provider() string { return "yelp" }

// PageLimit returns the Fusion search page cap.
func (s *YelpSource) PageLimit() int { return yelpPageLimit }

// PageDelay returns zero; Yelp offsets are valid immediately.
func (s *YelpSource) PageDelay() time.Duration { return 0 }

type yelpSearchResponse struct {
	Businesses []yelpBusiness `json:"businesses"`
	Total      int            `json:"total"`
}

type yelpBusiness struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Location    yelpLocation   `json:"location"`
	Coordinates *yelpCoords    `json:"coordinates"`
	Categories  []yelpCategory `json:"categories"`
}

type yelpLocation struct {
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Address3 string `json:"address3"`
}

type yelpCoords struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type yelpCategory struct {
	Title string `json:"title"`
}

type yelpReviewsResponse struct {
	Reviews []yelpReview `json:"reviews"`
}

type yelpReview struct {
	ID          string   `json:"id"`
	User        yelpUser `json:"user"`
	Rating      float64  `json:"rating"`
	Text        string   `json:"text"`
	TimeCreated string   `json:"time_created"`
}

type yelpUser struct {
	Name string `json:"name"`
}

// Search fetches one offset page of businesses. A page shorter than the
// requested batch marks the source exhausted.
func (s *YelpSource) Search(ctx context.Context, query source.Query, cursor source.Cursor, limit int) (source.Page, error) {
	if cursor.AtEnd() {
		return source.Page{Next: source.End()}, nil
	}

	batch := limit
	if batch <= 0 || batch > yelpPageLimit {
		batch = yelpPageLimit
	}

	params := url.Values{}
	params.Set("term", query.Term)
	params.Set("location", query.Location)
	params.Set("limit", strconv.Itoa(batch))
	params.Set("offset", strconv.Itoa(cursor.Offset()))

	var resp yelpSearchResponse
	endpoint := s.baseURL + "/v3/businesses/search?" + params.Encode()
	if err := getJSON(ctx, s.httpClient, endpoint, s.header(), &resp); err != nil {
		return source.Page{}, fmt.Errorf("yelp search: %w", err)
	}

	stubs := make([]source.Stub, len(resp.Businesses))
	for i, b := range resp.Businesses {
		rec := yelpRecord(b)
		stubs[i] = source.Stub{ID: b.ID, Record: &rec}
	}

	next := source.End()
	if len(resp.Businesses) >= batch {
		next = source.OffsetCursor(cursor.Offset() + len(resp.Businesses))
	}
	return source.Page{Stubs: stubs, Next: next}, nil
}

// FetchDetail attaches up to three reviews to the business record carried
// by the search stub.
func (s *YelpSource) FetchDetail(ctx context.Context, stub source.Stub) (source.Record, error) {
	if stub.Record == nil {
		return source.Record{}, fmt.Errorf("%w: yelp stub %q has no record", source.ErrMalformedRecord, stub.ID)
	}
	rec := *stub.Record

	params := url.Values{}
	params.Set("limit", strconv.Itoa(yelpReviewLimit))
	params.Set("sort_by", "newest")

	var resp yelpReviewsResponse
	endpoint := s.baseURL + "/v3/businesses/" + url.PathEscape(stub.ID) + "/reviews?" + params.Encode()
	if err := getJSON(ctx, s.httpClient, endpoint, s.header(), &resp); err != nil {
		return source.Record{}, fmt.Errorf("yelp reviews: %w", err)
	}

	rec.Reviews = make([]source.ReviewRecord, len(resp.Reviews))
	for i, r := range resp.Reviews {
		rec.Reviews[i] = source.ReviewRecord{
			SourceReviewID: r.ID,
			Author:         r.User.Name,
			Rating:         r.Rating,
			Text:           r.Text,
			PostedAt:       r.TimeCreated,
		}
	}
	return rec, nil
}

func (s *YelpSource) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+s.apiKey)
	return h
}

func yelpRecord(b yelpBusiness) source.Record {
	rec := source.Record{
		ExternalID: b.ID,
		Name:       b.Name,
		// Street lines only; city, state and zip stay in their own
		// columns rather than repeating inside the address.
		Address: source.JoinAddress(b.Location.Address1, b.Location.Address2, b.Location.Address3),
		City:       b.Location.City,
		State:      b.Location.State,
		Zip:        b.Location.ZipCode,
	}
	if len(b.Categories) > 0 {
		rec.Cuisine = b.Categories[0].Title
	}
	if b.Coordinates != nil {
		rec.Latitude = b.Coordinates.Latitude
		rec.Longitude = b.Coordinates.Longitude
	}
	return rec
}
