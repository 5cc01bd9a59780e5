package source

import "errors"

// Error taxonomy for provider calls. Adapters classify failures into these
// sentinels; the retry controller and orchestrator decide what each one
// means at its level (retry, skip the record, or abort the run).
var (
	// ErrThrottled is a source-signaled rate-limit rejection (HTTP 429 or a
	// provider-specific throttle status). Retryable within a bounded budget.
	ErrThrottled = errors.New("source: throttled")

	// ErrTransient is a network or server-side failure (5xx). Skippable at
	// detail-fetch granularity, fatal at page-fetch granularity.
	ErrTransient = errors.New("source: transient failure")

	// ErrMalformedRecord marks a provider record that cannot be normalized
	// (e.g. missing its external identifier). The record is skipped; the
	// run continues.
	ErrMalformedRecord = errors.New("source: malformed record")
)
