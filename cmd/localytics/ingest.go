package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/localytics/localytics"
	"github.com/localytics/localytics/infrastructure/dataset"
	"github.com/localytics/localytics/internal/config"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Collect restaurants and reviews into the store",
	}

	cmd.AddCommand(ingestYelpCmd())
	cmd.AddCommand(ingestGoogleCmd())
	cmd.AddCommand(ingestDatasetCmd())

	return cmd
}

// ingestFlags are the knobs shared by the live-API subcommands.
type ingestFlags struct {
	envFile string
	limit   int
	sleep   float64
}

func (f *ingestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().IntVar(&f.limit, "limit", 200, "Maximum restaurants to fetch (0 = unlimited)")
	cmd.Flags().Float64Var(&f.sleep, "sleep", 0, "Seconds between API calls (overrides INGEST_SLEEP)")
}

func (f *ingestFlags) load() (config.AppConfig, error) {
	cfg, err := loadConfig(f.envFile)
	if err != nil {
		return config.AppConfig{}, err
	}
	if err := cfg.RequireDatabaseURL(); err != nil {
		return config.AppConfig{}, err
	}
	if f.sleep > 0 {
		ic := cfg.Ingest().WithSleep(time.Duration(f.sleep * float64(time.Second)))
		cfg = cfg.Apply(config.WithIngestConfig(ic))
	}
	return cfg, nil
}

func ingestYelpCmd() *cobra.Command {
	var (
		flags    ingestFlags
		term     string
		location string
	)

	cmd := &cobra.Command{
		Use:   "yelp",
		Short: "Ingest from the Yelp Fusion API",
		Long: `Ingest from the Yelp Fusion API.

Environment variables:
  DATABASE_URL      Database URL (sqlite:///path or postgres://...)
  SUPABASE_DB_URL   Fallback database URL
  YELP_API_KEY      Yelp Fusion API key (required)
  INGEST_SLEEP      Seconds between API calls (default: 0.3)
  INGEST_COOLDOWN   Seconds to wait after a 429 (default: 10)
  INGEST_MAX_RETRIES  Attempts per call (default: 3)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if err := cfg.RequireYelpAPIKey(); err != nil {
				return err
			}

			client, err := localytics.New(clientOptions(cfg)...)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			summary, err := client.IngestYelp(cmd.Context(), term, location, flags.limit)
			if err != nil {
				return err
			}
			printSummary(summary.Provider, summary.Fetched, summary.Skipped, summary.InsertedReviews)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&term, "term", "restaurants", "Search term")
	cmd.Flags().StringVar(&location, "location", "", "Search location, e.g. \"Springfield, IL\"")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func ingestGoogleCmd() *cobra.Command {
	var (
		flags ingestFlags
		query string
	)

	cmd := &cobra.Command{
		Use:   "google",
		Short: "Ingest from the Google Places API",
		Long: `Ingest from the Google Places API.

Environment variables:
  DATABASE_URL           Database URL (sqlite:///path or postgres://...)
  GOOGLE_PLACES_API_KEY  Google Places API key (required)
  INGEST_SLEEP           Seconds between API calls (default: 0.3)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if err := cfg.RequireGoogleAPIKey(); err != nil {
				return err
			}

			client, err := localytics.New(clientOptions(cfg)...)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			summary, err := client.IngestGoogle(cmd.Context(), query, flags.limit)
			if err != nil {
				return err
			}
			printSummary(summary.Provider, summary.Fetched, summary.Skipped, summary.InsertedReviews)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&query, "query", "", "Free-text search, e.g. \"restaurants in Springfield IL\"")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func ingestDatasetCmd() *cobra.Command {
	var (
		envFile       string
		dataDir       string
		businessLimit int
		reviewLimit   int
	)

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Bulk-load a line-delimited JSON dataset",
		Long: `Bulk-load a dataset directory containing business.json and
review.json in line-delimited JSON form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabaseURL(); err != nil {
				return err
			}

			client, err := localytics.New(clientOptions(cfg)...)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			summary, err := client.LoadDataset(cmd.Context(), dataDir, datasetOptions(businessLimit, reviewLimit)...)
			if err != nil {
				return err
			}
			fmt.Printf("loaded %d restaurants, %d reviews (%d duplicates skipped, %d without a known business)\n",
				summary.Restaurants, summary.InsertedReviews, summary.SkippedReviews, summary.UnknownBusinesses)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory containing business.json and review.json")
	cmd.Flags().IntVar(&businessLimit, "business-limit", 1000, "Maximum business lines to load (0 = unlimited)")
	cmd.Flags().IntVar(&reviewLimit, "review-limit", 5000, "Maximum review lines to load (0 = unlimited)")
	_ = cmd.MarkFlagRequired("data-dir")

	return cmd
}

func datasetOptions(businessLimit, reviewLimit int) []dataset.ReaderOption {
	var opts []dataset.ReaderOption
	if businessLimit > 0 {
		opts = append(opts, dataset.WithBusinessLimit(businessLimit))
	}
	if reviewLimit > 0 {
		opts = append(opts, dataset.WithReviewLimit(reviewLimit))
	}
	return opts
}

func printSummary(provider string, fetched, skipped int, reviews int64) {
	fmt.Printf("%s: fetched %d restaurants (%d skipped), inserted %d reviews\n",
		provider, fetched, skipped, reviews)
}
