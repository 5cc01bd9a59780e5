package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/localytics/localytics/domain/restaurant"
	"github.com/localytics/localytics/domain/source"
)

// fakeSource serves scripted pages and details.
type fakeSource struct {
	provider  string
	pageSize  int
	pageDelay time.Duration
	records   []source.Record

	searchErrs map[int]error      // search call index -> error returned once
	detailErrs map[string][]error // stub id -> errors returned before success

	searchCalls int
	detailCalls map[string]int
}

func newFakeSource(provider string, pageSize int, records ...source.Record) *fakeSource {
	return &fakeSource{
		provider:    provider,
		pageSize:    pageSize,
		records:     records,
		searchErrs:  map[int]error{},
		detailErrs:  map[string][]error{},
		detailCalls: map[string]int{},
	}
}

func (f *fakeSource) Provider() string         { return f.provider }
func (f *fakeSource) PageLimit() int           { return f.pageSize }
func (f *fakeSource) PageDelay() time.Duration { return f.pageDelay }

func (f *fakeSource) Search(_ context.Context, _ source.Query, cursor source.Cursor, limit int) (source.Page, error) {
	call := f.searchCalls
	f.searchCalls++
	if err, ok := f.searchErrs[call]; ok {
		delete(f.searchErrs, call)
		return source.Page{}, err
	}

	batch := f.pageSize
	if limit > 0 && limit < batch {
		batch = limit
	}

	start := cursor.Offset()
	end := start + batch
	if end > len(f.records) {
		end = len(f.records)
	}

	stubs := make([]source.Stub, 0, end-start)
	for i := start; i < end; i++ {
		stubs = append(stubs, source.Stub{ID: f.records[i].ExternalID})
	}

	next := source.End()
	if end < len(f.records) {
		next = source.OffsetCursor(end)
	}
	return source.Page{Stubs: stubs, Next: next}, nil
}

func (f *fakeSource) FetchDetail(_ context.Context, stub source.Stub) (source.Record, error) {
	f.detailCalls[stub.ID]++
	if errs := f.detailErrs[stub.ID]; len(errs) > 0 {
		err := errs[0]
		f.detailErrs[stub.ID] = errs[1:]
		return source.Record{}, err
	}
	for _, rec := range f.records {
		if rec.ExternalID == stub.ID {
			return rec, nil
		}
	}
	return source.Record{}, fmt.Errorf("unknown stub %q", stub.ID)
}

// scriptedSource serves a fixed sequence of pages whose stubs carry
// full records, so cursor shape and page sizes can be scripted exactly.
type scriptedSource struct {
	pages []source.Page
	calls int
}

func (s *scriptedSource) Provider() string         { return "yelp" }
func (s *scriptedSource) PageLimit() int           { return 10 }
func (s *scriptedSource) PageDelay() time.Duration { return 0 }

func (s *scriptedSource) Search(context.Context, source.Query, source.Cursor, int) (source.Page, error) {
	if s.calls >= len(s.pages) {
		return source.Page{Next: source.End()}, nil
	}
	page := s.pages[s.calls]
	s.calls++
	return page, nil
}

func (s *scriptedSource) FetchDetail(_ context.Context, stub source.Stub) (source.Record, error) {
	if stub.Record == nil {
		return source.Record{}, source.ErrMalformedRecord
	}
	return *stub.Record, nil
}

func stubsFor(records ...source.Record) []source.Stub {
	stubs := make([]source.Stub, len(records))
	for i := range records {
		stubs[i] = source.Stub{ID: records[i].ExternalID, Record: &records[i]}
	}
	return stubs
}

// memStore is an in-memory restaurant.Store.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	byExt  map[string]restaurant.Restaurant
}

func newMemStore() *memStore {
	return &memStore{byExt: map[string]restaurant.Restaurant{}}
}

func (m *memStore) Save(_ context.Context, r restaurant.Restaurant) (restaurant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byExt[r.ExternalID()]; ok {
		updated := r.WithID(existing.ID())
		m.byExt[r.ExternalID()] = updated
		return updated, nil
	}
	m.nextID++
	saved := r.WithID(m.nextID)
	m.byExt[r.ExternalID()] = saved
	return saved, nil
}

func (m *memStore) Find(context.Context, ...restaurant.Option) ([]restaurant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]restaurant.Restaurant, 0, len(m.byExt))
	for _, r := range m.byExt {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) FindOne(context.Context, ...restaurant.Option) (restaurant.Restaurant, error) {
	return restaurant.Restaurant{}, fmt.Errorf("not implemented")
}

func (m *memStore) FindByID(_ context.Context, id int64) (restaurant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byExt {
		if r.ID() == id {
			return r, nil
		}
	}
	return restaurant.Restaurant{}, fmt.Errorf("not found")
}

func (m *memStore) Count(context.Context, ...restaurant.Option) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byExt)), nil
}

// memReviewStore is an in-memory restaurant.ReviewStore with the same
// dedup rule as the real one.
type memReviewStore struct {
	mu   sync.Mutex
	rows []restaurant.Review
	seen map[string]struct{}
}

func newMemReviewStore() *memReviewStore {
	return &memReviewStore{seen: map[string]struct{}{}}
}

func (m *memReviewStore) SaveAll(_ context.Context, reviews []restaurant.Review) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted int64
	for _, r := range reviews {
		if r.SourceReviewID() != "" {
			key := fmt.Sprintf("%d|%s|%s", r.RestaurantID(), r.Source(), r.SourceReviewID())
			if _, dup := m.seen[key]; dup {
				continue
			}
			m.seen[key] = struct{}{}
		}
		m.rows = append(m.rows, r)
		inserted++
	}
	return inserted, nil
}

func (m *memReviewStore) Find(context.Context, ...restaurant.Option) ([]restaurant.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]restaurant.Review{}, m.rows...), nil
}

func (m *memReviewStore) Count(context.Context, ...restaurant.Option) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

// recordingSleep collects every requested sleep without waiting.
type recordingSleep struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slept = append(r.slept, d)
	return nil
}

func (r *recordingSleep) durations() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration{}, r.slept...)
}

func testRecord(id string) source.Record {
	return source.Record{
		ExternalID: id,
		Name:       "Place " + id,
		City:       "Springfield",
		Reviews: []source.ReviewRecord{
			{SourceReviewID: id + "-r1", Author: "Pat", Rating: 4, Text: "good", PostedAt: "2023-06-01 12:00:00"},
		},
	}
}

func testPolicy() source.RetryPolicy {
	return source.RetryPolicy{MaxAttempts: 3, Cooldown: 10 * time.Second, MinInterval: 300 * time.Millisecond}
}

func newTestIngest(src source.Source, opts ...PagerOption) (*Ingest, *memStore, *memReviewStore, *recordingSleep) {
	sleeper := &recordingSleep{}
	retrier := NewRetrier(testPolicy(), nil, WithSleep(sleeper.sleep))
	restaurants := newMemStore()
	reviews := newMemReviewStore()
	opts = append(opts, WithPagerSleep(sleeper.sleep))
	ing := NewIngest(src, restaurants, reviews, retrier, nil, opts...)
	return ing, restaurants, reviews, sleeper
}

func TestIngest_WalksAllPages(t *testing.T) {
	src := newFakeSource("yelp", 3,
		testRecord("a"), testRecord("b"), testRecord("c"),
		testRecord("d"), testRecord("e"), testRecord("f"),
	)
	ing, restaurants, reviews, _ := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{Term: "pizza"}, 0)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, summary.State)
	require.Equal(t, 6, summary.Fetched)
	require.Zero(t, summary.Skipped)
	require.Equal(t, int64(6), summary.InsertedReviews)

	count, _ := restaurants.Count(context.Background())
	require.Equal(t, int64(6), count)
	rcount, _ := reviews.Count(context.Background())
	require.Equal(t, int64(6), rcount)
}

func TestIngest_LimitStopsEarly(t *testing.T) {
	src := newFakeSource("yelp", 2,
		testRecord("a"), testRecord("b"), testRecord("c"), testRecord("d"),
	)
	ing, _, _, _ := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{}, 3)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, summary.State)
	require.Equal(t, 3, summary.Fetched)
}

func TestIngest_DetailFailureSkipsRecord(t *testing.T) {
	src := newFakeSource("yelp", 10,
		testRecord("a"), testRecord("b"), testRecord("c"),
		testRecord("d"), testRecord("e"), testRecord("f"),
	)
	// "c" fails past the whole retry budget.
	src.detailErrs["c"] = []error{source.ErrTransient, source.ErrTransient, source.ErrTransient}

	ing, _, _, _ := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{}, 0)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, summary.State)
	require.Equal(t, 5, summary.Fetched)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 3, src.detailCalls["c"])
}

func TestIngest_TerminalDetailFailureSkipsRecord(t *testing.T) {
	src := newFakeSource("yelp", 10,
		testRecord("a"), testRecord("b"), testRecord("c"),
	)
	// "b" was delisted between search and detail fetch.
	src.detailErrs["b"] = []error{fmt.Errorf("unexpected status 404: NOT_FOUND")}

	ing, _, _, _ := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{}, 0)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, summary.State)
	require.Equal(t, 2, summary.Fetched)
	require.Equal(t, 1, summary.Skipped)
	// A terminal failure is not worth retrying.
	require.Equal(t, 1, src.detailCalls["b"])
}

func TestIngest_ThrottleRecovery(t *testing.T) {
	src := newFakeSource("yelp", 10, testRecord("a"))
	src.detailErrs["a"] = []error{source.ErrThrottled}

	ing, _, _, sleeper := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{}, 0)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, summary.State)
	require.Equal(t, 1, summary.Fetched)
	require.Equal(t, 2, src.detailCalls["a"])

	// One cooldown sleep was recorded among the pacing sleeps.
	var cooldowns int
	for _, d := range sleeper.durations() {
		if d == 10*time.Second {
			cooldowns++
		}
	}
	require.Equal(t, 1, cooldowns)
}

func TestIngest_SearchFailureAborts(t *testing.T) {
	src := newFakeSource("yelp", 2,
		testRecord("a"), testRecord("b"), testRecord("c"),
	)
	// Second page throttles on every attempt in the budget.
	src.searchErrs[1] = source.ErrThrottled
	src.searchErrs[2] = source.ErrThrottled
	src.searchErrs[3] = source.ErrThrottled

	ing, _, _, _ := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{}, 0)
	require.Error(t, err)
	require.Equal(t, StateAborted, summary.State)
	require.NotEmpty(t, summary.Reason)
	require.Equal(t, 2, summary.Fetched)
}

func TestIngest_SearchTransientAborts(t *testing.T) {
	src := newFakeSource("yelp", 2,
		testRecord("a"), testRecord("b"), testRecord("c"),
	)
	src.searchErrs[1] = source.ErrTransient

	ing, _, _, _ := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{}, 0)
	require.ErrorIs(t, err, source.ErrTransient)
	require.Equal(t, StateAborted, summary.State)
	require.Equal(t, 2, summary.Fetched)
	// No in-place retry at page granularity for a transient failure.
	require.Equal(t, 2, src.searchCalls)
}

func TestIngest_EmptyPageMarksExhaustion(t *testing.T) {
	recs := []source.Record{
		testRecord("a"), testRecord("b"), testRecord("c"), testRecord("d"),
	}
	// Pages shrink until an empty one arrives with a live cursor.
	src := &scriptedSource{pages: []source.Page{
		{Stubs: stubsFor(recs[:3]...), Next: source.OffsetCursor(3)},
		{Stubs: stubsFor(recs[3:]...), Next: source.OffsetCursor(4)},
		{Stubs: nil, Next: source.OffsetCursor(4)},
	}}

	ing, restaurants, _, _ := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{}, 0)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, summary.State)
	require.Equal(t, 4, summary.Fetched)
	require.Equal(t, 3, src.calls)

	count, _ := restaurants.Count(context.Background())
	require.Equal(t, int64(4), count)
}

func TestIngest_MalformedRecordSkips(t *testing.T) {
	src := newFakeSource("yelp", 10,
		source.Record{ExternalID: "", Name: "No ID"},
		testRecord("b"),
	)
	ing, _, _, _ := newTestIngest(src)

	summary, err := ing.Run(context.Background(), source.Query{}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Fetched)
	require.Equal(t, 1, summary.Skipped)
}

func TestIngest_RerunInsertsNoDuplicateReviews(t *testing.T) {
	src := newFakeSource("yelp", 10, testRecord("a"), testRecord("b"))
	ing, restaurants, reviews, _ := newTestIngest(src)

	for i := 0; i < 2; i++ {
		_, err := ing.Run(context.Background(), source.Query{}, 0)
		require.NoError(t, err)
	}

	count, _ := restaurants.Count(context.Background())
	require.Equal(t, int64(2), count)
	rcount, _ := reviews.Count(context.Background())
	require.Equal(t, int64(2), rcount)
}

func TestPager_MaxPagesCap(t *testing.T) {
	src := newFakeSource("yelp", 1,
		testRecord("a"), testRecord("b"), testRecord("c"),
	)
	sleeper := &recordingSleep{}
	retrier := NewRetrier(testPolicy(), nil, WithSleep(sleeper.sleep))
	pager := NewPager(src, retrier, nil, WithMaxPages(2), WithPagerSleep(sleeper.sleep))

	res, err := pager.Run(context.Background(), source.Query{}, 0, func(source.Stub) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 2, res.Pages)
	require.Equal(t, 2, res.Visited)
	require.False(t, res.Exhausted)
}

func TestPager_TokenDelayBetweenPages(t *testing.T) {
	src := newFakeSource("google", 1, testRecord("a"), testRecord("b"))
	src.pageDelay = 2 * time.Second

	sleeper := &recordingSleep{}
	retrier := NewRetrier(source.RetryPolicy{MaxAttempts: 1}, nil, WithSleep(sleeper.sleep))
	pager := NewPager(src, retrier, nil, WithPagerSleep(sleeper.sleep))

	res, err := pager.Run(context.Background(), source.Query{}, 0, func(source.Stub) error { return nil })
	require.NoError(t, err)
	require.True(t, res.Exhausted)

	var graceSleeps int
	for _, d := range sleeper.durations() {
		if d == 2*time.Second {
			graceSleeps++
		}
	}
	require.Equal(t, 1, graceSleeps)
}
