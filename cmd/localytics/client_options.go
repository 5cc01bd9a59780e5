package main

import (
	"github.com/localytics/localytics"
	"github.com/localytics/localytics/domain/source"
	"github.com/localytics/localytics/internal/config"
	"github.com/localytics/localytics/internal/log"
)

// clientOptions returns the localytics.Option slice derived from the
// shared parts of AppConfig: database, provider credentials and the
// ingest pacing knobs. Callers append entrypoint-specific options before
// passing the full slice to localytics.New.
func clientOptions(cfg config.AppConfig) []localytics.Option {
	logger := log.NewLogger(cfg)

	opts := []localytics.Option{
		localytics.WithDatabaseURL(cfg.DatabaseURL()),
		localytics.WithLogger(logger.Slog()),
		localytics.WithRetryPolicy(retryPolicy(cfg.Ingest())),
	}

	if key := cfg.YelpAPIKey(); key != "" {
		opts = append(opts, localytics.WithYelp(key))
	}
	if key := cfg.GoogleAPIKey(); key != "" {
		opts = append(opts, localytics.WithGooglePlaces(key))
	}

	return opts
}

func retryPolicy(ic config.IngestConfig) source.RetryPolicy {
	return source.RetryPolicy{
		MaxAttempts: ic.MaxRetries(),
		Cooldown:    ic.Cooldown(),
		MinInterval: ic.Sleep(),
	}
}
