package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localytics/localytics/domain/source"
)

// PageResult summarizes one pagination walk.
type PageResult struct {
	Visited   int
	Pages     int
	Exhausted bool
}

// Pager walks a source's search pages, visiting each stub until the
// record limit is met, the source runs out, or the page cap is hit.
// Search calls retry throttling under the retry budget but fail fast on
// transient errors; token-paginated sources get their settle delay
// between pages.
type Pager struct {
	src      source.Source
	retrier  *Retrier
	sleep    SleepFunc
	logger   *slog.Logger
	maxPages int
}

// PagerOption is a functional option for Pager.
type PagerOption func(*Pager)

// WithMaxPages caps how many pages one walk requests. Zero means no cap.
func WithMaxPages(n int) PagerOption {
	return func(p *Pager) { p.maxPages = n }
}

// WithPagerSleep replaces the sleep used for page settle delays.
func WithPagerSleep(sleep SleepFunc) PagerOption {
	return func(p *Pager) { p.sleep = sleep }
}

// NewPager creates a Pager over the given source.
func NewPager(src source.Source, retrier *Retrier, logger *slog.Logger, opts ...PagerOption) *Pager {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pager{
		src:     src,
		retrier: retrier,
		sleep:   ContextSleep,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run walks the search results for query, calling visit for each stub
// until limit stubs have been visited. A limit of zero or less means
// unlimited. Visit errors stop the walk and propagate.
func (p *Pager) Run(ctx context.Context, query source.Query, limit int, visit func(source.Stub) error) (PageResult, error) {
	var res PageResult
	cursor := source.Cursor{}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if limit > 0 && res.Visited >= limit {
			return res, nil
		}
		if p.maxPages > 0 && res.Pages >= p.maxPages {
			return res, nil
		}

		remaining := 0
		if limit > 0 {
			remaining = limit - res.Visited
		}

		var page source.Page
		err := p.retrier.DoPage(ctx, p.src.Provider()+" search", func() error {
			var searchErr error
			page, searchErr = p.src.Search(ctx, query, cursor, remaining)
			return searchErr
		})
		if err != nil {
			return res, fmt.Errorf("page %d: %w", res.Pages+1, err)
		}
		res.Pages++

		for _, stub := range page.Stubs {
			if limit > 0 && res.Visited >= limit {
				return res, nil
			}
			if err := visit(stub); err != nil {
				return res, err
			}
			res.Visited++
		}

		// An empty page signals exhaustion even when the source still
		// hands back a cursor.
		if len(page.Stubs) == 0 || page.Next.AtEnd() {
			res.Exhausted = true
			return res, nil
		}
		cursor = page.Next

		// Token continuations need a settle delay before the next request.
		if delay := p.src.PageDelay(); delay > 0 {
			p.logger.Debug("waiting for page token",
				slog.String("provider", p.src.Provider()),
				slog.Duration("delay", delay),
			)
			if err := p.sleep(ctx, delay); err != nil {
				return res, err
			}
		}
	}
}
