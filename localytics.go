// Package localytics provides a library for collecting restaurant
// metadata and reviews from public sources into one queryable store.
//
// It searches provider APIs (Yelp Fusion, Google Places), normalizes the
// results into a canonical schema, and upserts them so repeated runs
// refresh metadata without duplicating reviews. Bulk dataset dumps load
// through the same pipeline.
//
// Basic usage:
//
//	client, err := localytics.New(
//	    localytics.WithSQLite(".localytics/data.db"),
//	    localytics.WithYelp(os.Getenv("YELP_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	summary, err := client.IngestYelp(ctx, "restaurants", "Springfield, IL", 200)
//	fmt.Println(summary.Fetched, summary.Skipped)
//
//	// Query what was stored
//	found, total, err := client.Restaurants.List(ctx, service.RestaurantListParams{City: "Springfield"})
package localytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/localytics/localytics/application/service"
	"github.com/localytics/localytics/domain/restaurant"
	"github.com/localytics/localytics/domain/source"
	"github.com/localytics/localytics/infrastructure/dataset"
	"github.com/localytics/localytics/infrastructure/persistence"
	"github.com/localytics/localytics/infrastructure/provider"
	"github.com/localytics/localytics/internal/database"
)

// ErrNoDatabase indicates no database was configured.
var ErrNoDatabase = errors.New("localytics: no database configured (use WithSQLite, WithPostgres or WithDatabaseURL)")

// ErrNoYelpSource indicates a Yelp ingest was requested without credentials.
var ErrNoYelpSource = errors.New("localytics: yelp source not configured (use WithYelp)")

// ErrNoGoogleSource indicates a Google ingest was requested without credentials.
var ErrNoGoogleSource = errors.New("localytics: google source not configured (use WithGooglePlaces)")

// Client is the main entry point for the localytics library.
//
// Access stored data via the Restaurants service:
//
//	client.Restaurants.List(ctx, service.RestaurantListParams{City: "Springfield"})
//	client.Restaurants.Get(ctx, id)
type Client struct {
	// Restaurants serves read queries over stored data.
	Restaurants *service.Restaurants

	db              database.Database
	restaurantStore persistence.RestaurantStore
	reviewStore     persistence.ReviewStore

	yelp   source.Source
	google source.Source

	retryPolicy source.RetryPolicy
	pagerOpts   []service.PagerOption
	logger      *slog.Logger
	closed      atomic.Bool
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(ctx, db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	restaurantStore := persistence.NewRestaurantStore(db)
	reviewStore := persistence.NewReviewStore(db)

	c := &Client{
		Restaurants:     service.NewRestaurants(restaurantStore, reviewStore, logger),
		db:              db,
		restaurantStore: restaurantStore,
		reviewStore:     reviewStore,
		retryPolicy:     cfg.retryPolicy,
		pagerOpts:       cfg.pagerOpts,
		logger:          logger,
	}

	if cfg.yelpKey != "" {
		c.yelp = provider.NewYelpSource(cfg.yelpKey, cfg.yelpOpts...)
	}
	if cfg.googleKey != "" {
		c.google = provider.NewGoogleSource(cfg.googleKey, cfg.googleOpts...)
	}

	return c, nil
}

// IngestYelp runs one Yelp ingestion for the term and location, storing
// at most limit restaurants. Zero limit means unlimited.
func (c *Client) IngestYelp(ctx context.Context, term, location string, limit int) (service.RunSummary, error) {
	if c.closed.Load() {
		return service.RunSummary{}, service.ErrClientClosed
	}
	if c.yelp == nil {
		return service.RunSummary{}, ErrNoYelpSource
	}
	return c.ingest(ctx, c.yelp, source.Query{Term: term, Location: location}, limit)
}

// IngestGoogle runs one Google Places ingestion for the free-text query,
// storing at most limit restaurants. Zero limit means unlimited.
func (c *Client) IngestGoogle(ctx context.Context, query string, limit int) (service.RunSummary, error) {
	if c.closed.Load() {
		return service.RunSummary{}, service.ErrClientClosed
	}
	if c.google == nil {
		return service.RunSummary{}, ErrNoGoogleSource
	}
	return c.ingest(ctx, c.google, source.Query{Text: query}, limit)
}

// IngestAllParams configures a combined run over every configured source.
type IngestAllParams struct {
	Term     string
	Location string
	Text     string
	Limit    int
}

// IngestAll runs every configured source concurrently. Each source gets
// its own retrier, so pacing one provider never slows the other. The
// first aborted run cancels the rest.
func (c *Client) IngestAll(ctx context.Context, params IngestAllParams) ([]service.RunSummary, error) {
	if c.closed.Load() {
		return nil, service.ErrClientClosed
	}

	type run struct {
		src   source.Source
		query source.Query
	}
	var runs []run
	if c.yelp != nil {
		runs = append(runs, run{c.yelp, source.Query{Term: params.Term, Location: params.Location}})
	}
	if c.google != nil {
		runs = append(runs, run{c.google, source.Query{Text: params.Text}})
	}

	summaries := make([]service.RunSummary, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range runs {
		i, r := i, r
		g.Go(func() error {
			summary, err := c.ingest(gctx, r.src, r.query, params.Limit)
			summaries[i] = summary
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return summaries, err
	}
	return summaries, nil
}

// LoadDataset bulk-loads a line-delimited JSON dataset directory.
func (c *Client) LoadDataset(ctx context.Context, dir string, opts ...dataset.ReaderOption) (service.DatasetSummary, error) {
	if c.closed.Load() {
		return service.DatasetSummary{}, service.ErrClientClosed
	}

	reader, err := dataset.NewReader(dir, opts...)
	if err != nil {
		return service.DatasetSummary{}, err
	}
	return service.NewDatasetLoad(reader, c.restaurantStore, c.reviewStore, c.logger).Run(ctx)
}

// RestaurantStore returns the restaurant store for direct access.
func (c *Client) RestaurantStore() restaurant.Store {
	return c.restaurantStore
}

// ReviewStore returns the review store for direct access.
func (c *Client) ReviewStore() restaurant.ReviewStore {
	return c.reviewStore
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Close releases the database connection. The client is unusable after.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}

func (c *Client) ingest(ctx context.Context, src source.Source, query source.Query, limit int) (service.RunSummary, error) {
	retrier := service.NewRetrier(c.retryPolicy, c.logger)
	ing := service.NewIngest(src, c.restaurantStore, c.reviewStore, retrier, c.logger, c.pagerOpts...)
	return ing.Run(ctx, query, limit)
}
