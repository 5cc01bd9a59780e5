// Package v1 provides the v1 API routes.
package v1

import (
	"net/http"
	"strconv"
)

// DefaultLimit is the default number of items per listing.
const DefaultLimit = 20

// MaxLimit is the maximum allowed listing size.
const MaxLimit = 100

// ListParams holds limit/offset parameters parsed from query strings.
type ListParams struct {
	limit  int
	offset int
}

// ParseListParams parses limit and offset from an HTTP request.
// Default: limit=20, offset=0. Max limit: 100.
func ParseListParams(r *http.Request) ListParams {
	params := ListParams{limit: DefaultLimit}

	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			params.limit = v
			if params.limit > MaxLimit {
				params.limit = MaxLimit
			}
		}
	}

	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			params.offset = v
		}
	}

	return params
}

// Limit returns the listing size.
func (p ListParams) Limit() int { return p.limit }

// Offset returns the listing offset.
func (p ListParams) Offset() int { return p.offset }
