package localytics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/localytics/localytics/application/service"
	"github.com/localytics/localytics/domain/source"
	"github.com/localytics/localytics/infrastructure/provider"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	dbURL       string
	logger      *slog.Logger
	retryPolicy source.RetryPolicy
	pagerOpts   []service.PagerOption

	yelpKey    string
	yelpOpts   []provider.YelpOption
	googleKey  string
	googleOpts []provider.GoogleOption
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		retryPolicy: source.DefaultRetryPolicy(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithDatabaseURL sets the database from a connection URL
// (sqlite:///path or postgres://...).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) { c.dbURL = url }
}

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) { c.dbURL = "sqlite:///" + path }
}

// WithPostgres configures PostgreSQL as the database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) { c.dbURL = dsn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithYelp enables the Yelp Fusion source.
func WithYelp(apiKey string, opts ...provider.YelpOption) Option {
	return func(c *clientConfig) {
		c.yelpKey = apiKey
		c.yelpOpts = opts
	}
}

// WithGooglePlaces enables the Google Places source.
func WithGooglePlaces(apiKey string, opts ...provider.GoogleOption) Option {
	return func(c *clientConfig) {
		c.googleKey = apiKey
		c.googleOpts = opts
	}
}

// WithHTTPClient sets the HTTP client used by every provider.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.yelpOpts = append(c.yelpOpts, provider.WithYelpHTTPClient(client))
		c.googleOpts = append(c.googleOpts, provider.WithGoogleHTTPClient(client))
	}
}

// WithRetryPolicy replaces the retry policy used for provider calls.
func WithRetryPolicy(policy source.RetryPolicy) Option {
	return func(c *clientConfig) { c.retryPolicy = policy }
}

// WithRequestInterval sets the minimum delay between provider calls.
func WithRequestInterval(d time.Duration) Option {
	return func(c *clientConfig) { c.retryPolicy.MinInterval = d }
}

// WithMaxPages caps how many search pages one ingest run requests.
func WithMaxPages(n int) Option {
	return func(c *clientConfig) {
		c.pagerOpts = append(c.pagerOpts, service.WithMaxPages(n))
	}
}
