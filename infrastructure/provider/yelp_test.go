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

func yelpTestServer(t *testing.T, handler http.HandlerFunc) *YelpSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewYelpSource("test-key", WithYelpBaseURL(srv.URL))
}

func TestYelpSearch_FullPage(t *testing.T) {
	ctx := context.Background()
	s := yelpTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/businesses/search", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "pizza", r.URL.Query().Get("term"))
		require.Equal(t, "2", r.URL.Query().Get("limit"))
		require.Equal(t, "0", r.URL.Query().Get("offset"))

		fmt.Fprint(w, `{"businesses":[
			{"id":"b1","name":"One","location":{"city":"NYC","state":"NY","zip_code":"10001","address1":"1 First Ave","address2":"Floor 2"},
			 "coordinates":{"latitude":40.7,"longitude":-74.0},"categories":[{"title":"Pizza"},{"title":"Italian"}]},
			{"id":"b2","name":"Two","location":{"city":"NYC"},"categories":[]}
		],"total":10}`)
	})

	page, err := s.Search(ctx, source.Query{Term: "pizza", Location: "NYC"}, source.Cursor{}, 2)
	require.NoError(t, err)
	require.Len(t, page.Stubs, 2)
	require.False(t, page.Next.AtEnd())
	require.Equal(t, 2, page.Next.Offset())

	rec := page.Stubs[0].Record
	require.NotNil(t, rec)
	require.Equal(t, "b1", rec.ExternalID)
	// The address keeps street lines only; locality lives in the
	// dedicated fields.
	require.Equal(t, "1 First Ave, Floor 2", rec.Address)
	require.Equal(t, "NYC", rec.City)
	require.Equal(t, "NY", rec.State)
	require.Equal(t, "10001", rec.Zip)
	require.Equal(t, "Pizza", rec.Cuisine)
	require.NotNil(t, rec.Latitude)

	// No categories and no coordinates leaves those fields zero/nil.
	require.Equal(t, "", page.Stubs[1].Record.Cuisine)
	require.Nil(t, page.Stubs[1].Record.Latitude)
}

func TestYelpSearch_ShortPageExhausts(t *testing.T) {
	ctx := context.Background()
	s := yelpTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"businesses":[{"id":"b1","name":"One","location":{}}],"total":1}`)
	})

	page, err := s.Search(ctx, source.Query{}, source.OffsetCursor(0), 50)
	require.NoError(t, err)
	require.Len(t, page.Stubs, 1)
	require.True(t, page.Next.AtEnd())
}

func TestYelpSearch_ThrottleClassifies(t *testing.T) {
	ctx := context.Background()
	s := yelpTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := s.Search(ctx, source.Query{}, source.Cursor{}, 10)
	require.ErrorIs(t, err, source.ErrThrottled)
}

func TestYelpSearch_ServerErrorClassifies(t *testing.T) {
	ctx := context.Background()
	s := yelpTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := s.Search(ctx, source.Query{}, source.Cursor{}, 10)
	require.ErrorIs(t, err, source.ErrTransient)
}

func TestYelpFetchDetail_AttachesReviews(t *testing.T) {
	ctx := context.Background()
	s := yelpTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/businesses/b1/reviews", r.URL.Path)
		fmt.Fprint(w, `{"reviews":[
			{"id":"rv1","user":{"name":"Pat"},"rating":5,"text":"great","time_created":"2023-06-01 12:30:00"},
			{"id":"rv2","user":{"name":"Sam"},"rating":3,"text":"ok","time_created":"2023-05-01 09:00:00"}
		]}`)
	})

	base := source.Record{ExternalID: "b1", Name: "One"}
	rec, err := s.FetchDetail(ctx, source.Stub{ID: "b1", Record: &base})
	require.NoError(t, err)
	require.Equal(t, "One", rec.Name)
	require.Len(t, rec.Reviews, 2)
	require.Equal(t, "rv1", rec.Reviews[0].SourceReviewID)
	require.Equal(t, "Pat", rec.Reviews[0].Author)
	require.Equal(t, "2023-06-01 12:30:00", rec.Reviews[0].PostedAt)
}

func TestYelpFetchDetail_NoRecordStub(t *testing.T) {
	ctx := context.Background()
	s := NewYelpSource("k")

	_, err := s.FetchDetail(ctx, source.Stub{ID: "b1"})
	require.ErrorIs(t, err, source.ErrMalformedRecord)
}

func TestYelpSearch_AtEndCursorIsNoop(t *testing.T) {
	ctx := context.Background()
	s := yelpTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	page, err := s.Search(ctx, source.Query{}, source.End(), 10)
	require.NoError(t, err)
	require.Empty(t, page.Stubs)
	require.True(t, page.Next.AtEnd())
}
