package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/localytics/localytics/domain/restaurant"
	"github.com/localytics/localytics/domain/source"
)

// RunState is the lifecycle state of one ingestion run.
type RunState string

// Run states. A run moves Idle -> Running and terminates in Completed or
// Aborted.
const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateAborted   RunState = "aborted"
)

// RunSummary reports what one ingestion run did. Fetched counts records
// stored; Skipped counts records dropped for malformed payloads or
// failed detail fetches. Reason is set when the run aborts.
type RunSummary struct {
	Provider        string
	State           RunState
	Fetched         int
	Skipped         int
	InsertedReviews int64
	Reason          string
}

// Ingest orchestrates one provider's search-fetch-normalize-store
// pipeline. A page-level failure aborts the run; record-level failures,
// whatever their class, skip that record and continue.
type Ingest struct {
	src         source.Source
	restaurants restaurant.Store
	reviews     restaurant.ReviewStore
	retrier     *Retrier
	pager       *Pager
	logger      *slog.Logger
}

// NewIngest creates an Ingest for the given source and stores.
func NewIngest(
	src source.Source,
	restaurants restaurant.Store,
	reviews restaurant.ReviewStore,
	retrier *Retrier,
	logger *slog.Logger,
	pagerOpts ...PagerOption,
) *Ingest {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingest{
		src:         src,
		restaurants: restaurants,
		reviews:     reviews,
		retrier:     retrier,
		pager:       NewPager(src, retrier, logger, pagerOpts...),
		logger:      logger,
	}
}

// Run executes one ingestion run, visiting at most limit records. It
// returns the summary alongside any abort error; a completed run with
// skipped records is not an error.
func (s *Ingest) Run(ctx context.Context, query source.Query, limit int) (RunSummary, error) {
	summary := RunSummary{
		Provider: s.src.Provider(),
		State:    StateRunning,
	}

	s.logger.Info("ingest started",
		slog.String("provider", summary.Provider),
		slog.Int("limit", limit),
	)

	_, err := s.pager.Run(ctx, query, limit, func(stub source.Stub) error {
		inserted, err := s.ingestOne(ctx, stub)
		if err != nil {
			if errors.Is(err, source.ErrMalformedRecord) ||
				errors.Is(err, errDetailFailed) {
				summary.Skipped++
				s.logger.Warn("record skipped",
					slog.String("provider", summary.Provider),
					slog.String("id", stub.ID),
					slog.String("reason", err.Error()),
				)
				return nil
			}
			return err
		}
		summary.Fetched++
		summary.InsertedReviews += inserted
		return nil
	})
	if err != nil {
		summary.State = StateAborted
		summary.Reason = err.Error()
		s.logger.Error("ingest aborted",
			slog.String("provider", summary.Provider),
			slog.Int("fetched", summary.Fetched),
			slog.String("reason", summary.Reason),
		)
		return summary, fmt.Errorf("ingest %s: %w", summary.Provider, err)
	}

	summary.State = StateCompleted
	s.logger.Info("ingest completed",
		slog.String("provider", summary.Provider),
		slog.Int("fetched", summary.Fetched),
		slog.Int("skipped", summary.Skipped),
		slog.Int64("reviews", summary.InsertedReviews),
	)
	return summary, nil
}

// errDetailFailed marks a failed detail fetch for a single record. The
// failure is confined to that record; the walk continues without it.
var errDetailFailed = errors.New("detail fetch failed")

// ingestOne resolves a stub, normalizes it and stores the restaurant
// with its reviews. It returns how many reviews were newly inserted.
func (s *Ingest) ingestOne(ctx context.Context, stub source.Stub) (int64, error) {
	var rec source.Record
	err := s.retrier.Do(ctx, s.src.Provider()+" detail", func() error {
		var fetchErr error
		rec, fetchErr = s.src.FetchDetail(ctx, stub)
		return fetchErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", errDetailFailed, err)
	}

	r, err := source.Normalize(rec)
	if err != nil {
		return 0, err
	}

	saved, err := s.restaurants.Save(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("store restaurant %s: %w", r.ExternalID(), err)
	}

	if len(rec.Reviews) == 0 {
		return 0, nil
	}
	reviews := make([]restaurant.Review, len(rec.Reviews))
	for i, rr := range rec.Reviews {
		reviews[i] = source.NormalizeReview(saved.ID(), s.src.Provider(), rr)
	}
	inserted, err := s.reviews.SaveAll(ctx, reviews)
	if err != nil {
		return 0, fmt.Errorf("store reviews for %s: %w", r.ExternalID(), err)
	}
	return inserted, nil
}
