// Package config provides application configuration.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Variable names match the original ingestion scripts where they exist
// (DATABASE_URL, YELP_API_KEY, GOOGLE_PLACES_API_KEY).
type EnvConfig struct {
	// DatabaseURL is the store connection URL.
	// Env: DATABASE_URL
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// SupabaseDBURL is an alternate name for the store connection URL,
	// used when DATABASE_URL is unset.
	// Env: SUPABASE_DB_URL
	SupabaseDBURL string `envconfig:"SUPABASE_DB_URL"`

	// YelpAPIKey is the Yelp Fusion API key.
	// Env: YELP_API_KEY
	YelpAPIKey string `envconfig:"YELP_API_KEY"`

	// GoogleAPIKey is the Google Places API key.
	// Env: GOOGLE_PLACES_API_KEY
	GoogleAPIKey string `envconfig:"GOOGLE_PLACES_API_KEY"`

	// Host is the API server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the API server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Ingest configures provider call pacing and retries.
	Ingest IngestEnv `envconfig:"INGEST"`
}

// IngestEnv holds environment configuration for ingestion pacing.
type IngestEnv struct {
	// Sleep is the minimum delay between provider calls, in seconds.
	// Env: INGEST_SLEEP (default: 0.3)
	Sleep float64 `envconfig:"SLEEP" default:"0.3"`

	// Cooldown is the sleep applied after a throttled call, in seconds.
	// Env: INGEST_COOLDOWN (default: 10)
	Cooldown float64 `envconfig:"COOLDOWN" default:"10"`

	// MaxRetries is the retry budget per logical step.
	// Env: INGEST_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	dbURL := e.DatabaseURL
	if dbURL == "" {
		dbURL = e.SupabaseDBURL
	}
	if dbURL != "" {
		cfg = applyOption(cfg, WithDatabaseURL(dbURL))
	}
	if e.YelpAPIKey != "" {
		cfg = applyOption(cfg, WithYelpAPIKey(e.YelpAPIKey))
	}
	if e.GoogleAPIKey != "" {
		cfg = applyOption(cfg, WithGoogleAPIKey(e.GoogleAPIKey))
	}
	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	cfg = applyOption(cfg, WithIngestConfig(e.Ingest.ToIngestConfig()))

	return cfg
}

// ToIngestConfig converts IngestEnv to IngestConfig.
func (i IngestEnv) ToIngestConfig() IngestConfig {
	cfg := NewIngestConfig()
	if i.Sleep > 0 {
		cfg = cfg.WithSleep(time.Duration(i.Sleep * float64(time.Second)))
	}
	if i.Cooldown > 0 {
		cfg = cfg.WithCooldown(time.Duration(i.Cooldown * float64(time.Second)))
	}
	if i.MaxRetries > 0 {
		cfg = cfg.WithMaxRetries(i.MaxRetries)
	}
	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}
