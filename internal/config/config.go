// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost       = "0.0.0.0"
	DefaultPort       = 8080
	DefaultLogLevel   = "INFO"
	DefaultSleep      = 300 * time.Millisecond
	DefaultCooldown   = 10 * time.Second
	DefaultMaxRetries = 3
)

// Startup validation errors. These are fatal before any run state exists.
var (
	ErrMissingDatabaseURL = errors.New("config: DATABASE_URL must be set")
	ErrMissingYelpKey     = errors.New("config: YELP_API_KEY must be set")
	ErrMissingGoogleKey   = errors.New("config: GOOGLE_PLACES_API_KEY must be set")
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// IngestConfig configures provider call pacing and retries.
type IngestConfig struct {
	sleep      time.Duration
	cooldown   time.Duration
	maxRetries int
}

// NewIngestConfig creates an IngestConfig with defaults.
func NewIngestConfig() IngestConfig {
	return IngestConfig{
		sleep:      DefaultSleep,
		cooldown:   DefaultCooldown,
		maxRetries: DefaultMaxRetries,
	}
}

// Sleep returns the minimum delay between provider calls.
func (c IngestConfig) Sleep() time.Duration { return c.sleep }

// Cooldown returns the sleep applied after a throttled call.
func (c IngestConfig) Cooldown() time.Duration { return c.cooldown }

// MaxRetries returns the retry budget per logical step.
func (c IngestConfig) MaxRetries() int { return c.maxRetries }

// WithSleep returns a copy with the specified inter-call delay.
func (c IngestConfig) WithSleep(d time.Duration) IngestConfig {
	c.sleep = d
	return c
}

// WithCooldown returns a copy with the specified throttle cooldown.
func (c IngestConfig) WithCooldown(d time.Duration) IngestConfig {
	c.cooldown = d
	return c
}

// WithMaxRetries returns a copy with the specified retry budget.
func (c IngestConfig) WithMaxRetries(n int) IngestConfig {
	c.maxRetries = n
	return c
}

// AppConfig holds the resolved application configuration.
type AppConfig struct {
	databaseURL  string
	yelpAPIKey   string
	googleAPIKey string
	host         string
	port         int
	logLevel     string
	logFormat    LogFormat
	ingest       IngestConfig
}

// AppConfigOption modifies an AppConfig.
type AppConfigOption func(*AppConfig)

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:      DefaultHost,
		port:      DefaultPort,
		logLevel:  DefaultLogLevel,
		logFormat: LogFormatPretty,
		ingest:    NewIngestConfig(),
	}
}

// WithDatabaseURL sets the store connection URL.
func WithDatabaseURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.databaseURL = url }
}

// WithYelpAPIKey sets the Yelp Fusion API key.
func WithYelpAPIKey(key string) AppConfigOption {
	return func(c *AppConfig) { c.yelpAPIKey = key }
}

// WithGoogleAPIKey sets the Google Places API key.
func WithGoogleAPIKey(key string) AppConfigOption {
	return func(c *AppConfig) { c.googleAPIKey = key }
}

// WithHost sets the API server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the API server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithLogLevel sets the log verbosity level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log output format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithIngestConfig sets the ingestion pacing configuration.
func WithIngestConfig(ic IngestConfig) AppConfigOption {
	return func(c *AppConfig) { c.ingest = ic }
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// DatabaseURL returns the store connection URL.
func (c AppConfig) DatabaseURL() string { return c.databaseURL }

// YelpAPIKey returns the Yelp Fusion API key.
func (c AppConfig) YelpAPIKey() string { return c.yelpAPIKey }

// GoogleAPIKey returns the Google Places API key.
func (c AppConfig) GoogleAPIKey() string { return c.googleAPIKey }

// Host returns the API server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the API server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port address for the API server.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Ingest returns the ingestion pacing configuration.
func (c AppConfig) Ingest() IngestConfig { return c.ingest }

// RequireDatabaseURL returns an error if no store connection URL is set.
func (c AppConfig) RequireDatabaseURL() error {
	if c.databaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// RequireYelpAPIKey returns an error if no Yelp API key is set.
func (c AppConfig) RequireYelpAPIKey() error {
	if c.yelpAPIKey == "" {
		return ErrMissingYelpKey
	}
	return nil
}

// RequireGoogleAPIKey returns an error if no Google Places API key is set.
func (c AppConfig) RequireGoogleAPIKey() error {
	if c.googleAPIKey == "" {
		return ErrMissingGoogleKey
	}
	return nil
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
