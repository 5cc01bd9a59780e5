package restaurant

import "context"

// Store persists restaurants. Save is an upsert keyed by external_id: the
// first sighting inserts, later sightings overwrite the descriptive fields
// (last-write-wins) but never the surrogate id or external_id. Each call
// commits its own unit of work; concurrent writers racing on the same
// external_id resolve to one row through the store's uniqueness constraint.
type Store interface {
	Save(ctx context.Context, r Restaurant) (Restaurant, error)
	Find(ctx context.Context, options ...Option) ([]Restaurant, error)
	FindOne(ctx context.Context, options ...Option) (Restaurant, error)
	FindByID(ctx context.Context, id int64) (Restaurant, error)
	Count(ctx context.Context, options ...Option) (int64, error)
}

// ReviewStore appends reviews. SaveAll inserts a batch, silently skipping
// rows that collide on (restaurant_id, source, source_review_id); it
// returns the number of rows actually inserted so idempotent re-runs can
// be observed. Rows with an empty source review id are stored as NULL and
// are never deduplicated against each other.
type ReviewStore interface {
	SaveAll(ctx context.Context, reviews []Review) (int64, error)
	Find(ctx context.Context, options ...Option) ([]Review, error)
	Count(ctx context.Context, options ...Option) (int64, error)
}
