package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localytics/localytics/domain/source"
)

func googleTestServer(t *testing.T, handler http.HandlerFunc) *GoogleSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleSource("test-key", WithGoogleBaseURL(srv.URL))
}

func TestGoogleSearch_FirstPage(t *testing.T) {
	ctx := context.Background()
	s := googleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/maps/api/place/textsearch/json", r.URL.Path)
		require.Equal(t, "restaurants in Springfield", r.URL.Query().Get("query"))
		require.Empty(t, r.URL.Query().Get("pagetoken"))

		fmt.Fprint(w, `{"status":"OK","results":[{"place_id":"p1"},{"place_id":"p2"}],"next_page_token":"tok-2"}`)
	})

	page, err := s.Search(ctx, source.Query{Text: "restaurants in Springfield"}, source.Cursor{}, 20)
	require.NoError(t, err)
	require.Len(t, page.Stubs, 2)
	require.Equal(t, "p1", page.Stubs[0].ID)
	require.Nil(t, page.Stubs[0].Record)
	require.False(t, page.Next.AtEnd())
	require.Equal(t, "tok-2", page.Next.Token())
}

func TestGoogleSearch_TokenPageExhausts(t *testing.T) {
	ctx := context.Background()
	s := googleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tok-2", r.URL.Query().Get("pagetoken"))
		fmt.Fprint(w, `{"status":"OK","results":[{"place_id":"p3"}]}`)
	})

	page, err := s.Search(ctx, source.Query{Text: "x"}, source.TokenCursor("tok-2"), 20)
	require.NoError(t, err)
	require.Len(t, page.Stubs, 1)
	require.True(t, page.Next.AtEnd())
}

func TestGoogleSearch_StatusClassification(t *testing.T) {
	cases := []struct {
		status string
		want   error
	}{
		{"OVER_QUERY_LIMIT", source.ErrThrottled},
		{"UNKNOWN_ERROR", source.ErrTransient},
		{"INVALID_REQUEST", source.ErrTransient},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			ctx := context.Background()
			s := googleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"status":%q,"results":[]}`, tc.status)
			})

			_, err := s.Search(ctx, source.Query{Text: "x"}, source.Cursor{}, 20)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGoogleSearch_ZeroResultsIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := googleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})

	page, err := s.Search(ctx, source.Query{Text: "x"}, source.Cursor{}, 20)
	require.NoError(t, err)
	require.Empty(t, page.Stubs)
	require.True(t, page.Next.AtEnd())
}

func TestGoogleSearch_RequestDeniedIsTerminal(t *testing.T) {
	ctx := context.Background()
	s := googleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"bad key"}`)
	})

	_, err := s.Search(ctx, source.Query{Text: "x"}, source.Cursor{}, 20)
	require.Error(t, err)
	require.NotErrorIs(t, err, source.ErrThrottled)
	require.NotErrorIs(t, err, source.ErrTransient)
	require.Contains(t, err.Error(), "bad key")
}

func TestGoogleFetchDetail(t *testing.T) {
	ctx := context.Background()
	s := googleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/maps/api/place/details/json", r.URL.Path)
		require.Equal(t, "p1", r.URL.Query().Get("place_id"))

		fmt.Fprint(w, `{"status":"OK","result":{
			"place_id":"p1","name":"Cafe Uno","formatted_address":"5 Oak St, Springfield, IL 62701, USA",
			"address_components":[
				{"long_name":"Springfield","short_name":"Springfield","types":["locality","political"]},
				{"long_name":"Illinois","short_name":"IL","types":["administrative_area_level_1","political"]},
				{"long_name":"62701","short_name":"62701","types":["postal_code"]}
			],
			"geometry":{"location":{"lat":39.8,"lng":-89.65}},
			"types":["point_of_interest","food","cafe"],
			"reviews":[{"author_name":"Ana","rating":4,"text":"nice","time":1685622600}]
		}}`)
	})

	rec, err := s.FetchDetail(ctx, source.Stub{ID: "p1"})
	require.NoError(t, err)
	require.Equal(t, "p1", rec.ExternalID)
	require.Equal(t, "Cafe Uno", rec.Name)
	require.Equal(t, "Springfield", rec.City)
	require.Equal(t, "IL", rec.State)
	require.Equal(t, "62701", rec.Zip)
	require.Equal(t, "cafe", rec.Cuisine)
	require.NotNil(t, rec.Latitude)
	require.Len(t, rec.Reviews, 1)
	require.Equal(t, "", rec.Reviews[0].SourceReviewID)
	require.Equal(t, "1685622600", rec.Reviews[0].PostedAt)
}

func TestGoogleFetchDetail_ReviewWithoutTime(t *testing.T) {
	ctx := context.Background()
	s := googleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","result":{
			"place_id":"p1","name":"Cafe Uno",
			"reviews":[{"author_name":"Ana","rating":4,"text":"nice"}]
		}}`)
	})

	rec, err := s.FetchDetail(ctx, source.Stub{ID: "p1"})
	require.NoError(t, err)
	require.Len(t, rec.Reviews, 1)
	require.Empty(t, rec.Reviews[0].PostedAt)

	// An absent review time must survive normalization as null, not
	// as the epoch.
	review := source.NormalizeReview(1, "google", rec.Reviews[0])
	require.Nil(t, review.PostedAt())
}

func TestGoogleProviderConstants(t *testing.T) {
	s := NewGoogleSource("k")
	require.Equal(t, "google", s.Provider())
	require.Equal(t, 20, s.PageLimit())
	require.NotZero(t, s.PageDelay())

	y := NewYelpSource("k")
	require.Equal(t, "yelp", y.Provider())
	require.Equal(t, 50, y.PageLimit())
	require.Zero(t, y.PageDelay())
}
