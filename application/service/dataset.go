package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localytics/localytics/domain/restaurant"
	"github.com/localytics/localytics/domain/source"
)

const datasetBatchSize = 1000

// DatasetSummary reports what one bulk load did.
type DatasetSummary struct {
	Restaurants       int
	InsertedReviews   int64
	SkippedReviews    int
	UnknownBusinesses int
}

// DatasetLoad streams a bulk dataset into the stores: businesses first,
// then reviews in batches keyed back to their restaurants.
type DatasetLoad struct {
	bulk        source.BulkSource
	restaurants restaurant.Store
	reviews     restaurant.ReviewStore
	logger      *slog.Logger
	batchSize   int
}

// NewDatasetLoad creates a DatasetLoad.
func NewDatasetLoad(
	bulk source.BulkSource,
	restaurants restaurant.Store,
	reviews restaurant.ReviewStore,
	logger *slog.Logger,
) *DatasetLoad {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetLoad{
		bulk:        bulk,
		restaurants: restaurants,
		reviews:     reviews,
		logger:      logger,
		batchSize:   datasetBatchSize,
	}
}

// Run loads the dataset. Malformed business lines skip; reviews whose
// business never made it into the store are counted, not stored.
func (s *DatasetLoad) Run(ctx context.Context) (DatasetSummary, error) {
	var summary DatasetSummary

	err := s.bulk.Businesses(ctx, func(rec source.Record) error {
		r, err := source.Normalize(rec)
		if err != nil {
			s.logger.Warn("business skipped", slog.String("reason", err.Error()))
			return nil
		}
		if _, err := s.restaurants.Save(ctx, r); err != nil {
			return fmt.Errorf("store restaurant %s: %w", r.ExternalID(), err)
		}
		summary.Restaurants++
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("load businesses: %w", err)
	}

	// Resolve ids through a full external_id map. The upsert path reports
	// ids for this run's rows, but reviews may reference restaurants
	// loaded on an earlier run.
	idByExternal, err := s.externalIDMap(ctx)
	if err != nil {
		return summary, err
	}

	batch := make([]restaurant.Review, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := s.reviews.SaveAll(ctx, batch)
		if err != nil {
			return fmt.Errorf("store review batch: %w", err)
		}
		summary.InsertedReviews += inserted
		summary.SkippedReviews += len(batch) - int(inserted)
		batch = batch[:0]
		return nil
	}

	err = s.bulk.Reviews(ctx, func(externalID string, rr source.ReviewRecord) error {
		id, ok := idByExternal[externalID]
		if !ok {
			summary.UnknownBusinesses++
			return nil
		}
		batch = append(batch, source.NormalizeReview(id, s.bulk.Provider(), rr))
		if len(batch) >= s.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("load reviews: %w", err)
	}
	if err := flush(); err != nil {
		return summary, err
	}

	s.logger.Info("dataset loaded",
		slog.Int("restaurants", summary.Restaurants),
		slog.Int64("reviews", summary.InsertedReviews),
		slog.Int("unknown_businesses", summary.UnknownBusinesses),
	)
	return summary, nil
}

func (s *DatasetLoad) externalIDMap(ctx context.Context) (map[string]int64, error) {
	all, err := s.restaurants.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("map external ids: %w", err)
	}
	m := make(map[string]int64, len(all))
	for _, r := range all {
		m[r.ExternalID()] = r.ID()
	}
	return m, nil
}
