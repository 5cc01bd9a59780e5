// Package dataset streams line-delimited JSON dumps as a review source.
package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/localytics/localytics/domain/source"
)

const (
	businessFile = "business.json"
	reviewFile   = "review.json"

	// NDJSON dump lines can exceed bufio's default token size.
	maxLineBytes = 1 << 20
)

// Reader implements source.BulkSource over a directory holding
// business.json and review.json in line-delimited JSON form. Limits of
// zero or less mean unlimited.
type Reader struct {
	dir           string
	businessLimit int
	reviewLimit   int
}

// ReaderOption is a functional option for Reader.
type ReaderOption func(*Reader)

// WithBusinessLimit caps how many business lines are read.
func WithBusinessLimit(n int) ReaderOption {
	return func(r *Reader) { r.businessLimit = n }
}

// WithReviewLimit caps how many review lines are read.
func WithReviewLimit(n int) ReaderOption {
	return func(r *Reader) { r.reviewLimit = n }
}

// NewReader creates a Reader over the given dataset directory. It fails
// when either expected file is missing.
func NewReader(dir string, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{dir: dir}
	for _, opt := range opts {
		opt(r)
	}

	for _, name := range []string{businessFile, reviewFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("dataset file %s: %w", name, err)
		}
	}
	return r, nil
}

// Provider returns "yelp"; the dumps carry Yelp business ids.
func (r *Reader) Provider() string { return "yelp" }

type businessLine struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Address1    string      `json:"address1"`
	Address2    string      `json:"address2"`
	Address3    string      `json:"address3"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	ZipCode     string      `json:"zip_code"`
	Categories  string      `json:"categories"`
	Coordinates *coordsLine `json:"coordinates"`
}

type coordsLine struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type reviewLine struct {
	BusinessID string   `json:"business_id"`
	ReviewID   string   `json:"review_id"`
	User       userLine `json:"user"`
	Stars      float64  `json:"stars"`
	Text       string   `json:"text"`
	Date       string   `json:"date"`
}

type userLine struct {
	Name string `json:"name"`
}

// Businesses streams business records in file order.
func (r *Reader) Businesses(ctx context.Context, fn func(source.Record) error) error {
	return r.scan(ctx, businessFile, r.businessLimit, func(line []byte) error {
		var b businessLine
		if err := json.Unmarshal(line, &b); err != nil {
			return fmt.Errorf("%w: %v", source.ErrMalformedRecord, err)
		}
		return fn(businessRecord(b))
	})
}

// Reviews streams review records keyed by their business external id.
func (r *Reader) Reviews(ctx context.Context, fn func(externalID string, review source.ReviewRecord) error) error {
	return r.scan(ctx, reviewFile, r.reviewLimit, func(line []byte) error {
		var rv reviewLine
		if err := json.Unmarshal(line, &rv); err != nil {
			return fmt.Errorf("%w: %v", source.ErrMalformedRecord, err)
		}
		return fn(rv.BusinessID, source.ReviewRecord{
			SourceReviewID: rv.ReviewID,
			Author:         rv.User.Name,
			Rating:         rv.Stars,
			Text:           rv.Text,
			PostedAt:       rv.Date,
		})
	})
}

func (r *Reader) scan(ctx context.Context, name string, limit int, fn func(line []byte) error) error {
	f, err := os.Open(filepath.Join(r.dir, name))
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	read := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if limit > 0 && read >= limit {
			return nil
		}
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
		read++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

func businessRecord(b businessLine) source.Record {
	rec := source.Record{
		ExternalID: b.ID,
		Name:       b.Name,
		Address:    source.JoinAddress(b.Address1, b.Address2, b.Address3),
		City:       b.City,
		State:      b.State,
		Zip:        b.ZipCode,
	}
	// categories arrives as a comma-joined string like "Restaurants, Italian".
	if b.Categories != "" {
		rec.Cuisine = strings.TrimSpace(strings.SplitN(b.Categories, ",", 2)[0])
	}
	if b.Coordinates != nil {
		rec.Latitude = b.Coordinates.Latitude
		rec.Longitude = b.Coordinates.Longitude
	}
	return rec
}
