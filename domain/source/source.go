package source

import (
	"context"
	"time"
)

// Query is the provider-neutral search input. Term and Location drive
// term/location style searches; Text drives free-text searches. Adapters
// use whichever fields their API supports.
type Query struct {
	Term     string
	Location string
	Text     string
}

// Source is the contract every review provider implements. Search returns
// one page of stubs at the given cursor; FetchDetail resolves a stub into
// a full record when the search response did not already carry one.
type Source interface {
	// Provider returns the source name recorded against stored reviews.
	Provider() string

	// PageLimit returns the maximum records the provider serves per page.
	PageLimit() int

	// PageDelay returns the settle delay required before a continuation
	// cursor becomes valid, zero when the provider has none.
	PageDelay() time.Duration

	// Search fetches one page for the query at the cursor position. The
	// limit caps how many stubs the page should carry; sources clamp it
	// to their PageLimit.
	Search(ctx context.Context, query Query, cursor Cursor, limit int) (Page, error)

	// FetchDetail resolves a stub into a full record. Sources whose
	// search responses already carry full records return stub.Record.
	FetchDetail(ctx context.Context, stub Stub) (Record, error)
}

// BulkSource streams a pre-collected dataset instead of calling a live
// API. Callbacks receive records in file order; returning an error stops
// the stream.
type BulkSource interface {
	Provider() string
	Businesses(ctx context.Context, fn func(Record) error) error
	Reviews(ctx context.Context, fn func(externalID string, review ReviewRecord) error) error
}
