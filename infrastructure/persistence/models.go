package persistence

import "time"

// RestaurantModel is the GORM model for the restaurants table.
type RestaurantModel struct {
	ID         int64    `gorm:"primaryKey;autoIncrement"`
	ExternalID string   `gorm:"column:external_id;uniqueIndex;size:255"`
	Name       string   `gorm:"column:name;size:512"`
	Address    string   `gorm:"column:address;size:1024"`
	City       string   `gorm:"column:city;index;size:255"`
	State      string   `gorm:"column:state;size:64"`
	Zip        string   `gorm:"column:zip;size:32"`
	Cuisine    string   `gorm:"column:cuisine;index;size:255"`
	Lat        *float64 `gorm:"column:lat"`
	Lng        *float64 `gorm:"column:lng"`
}

// TableName returns the table name.
func (RestaurantModel) TableName() string { return "restaurants" }

// ReviewModel is the GORM model for the raw_reviews table.
//
// The dedup index spans restaurant_id, source and source_review_id. Rows
// whose source_review_id is NULL never collide on it, so providers that
// expose no review identifiers can insert freely.
//
// PostedAt maps to the created_at column; the Go field is named away from
// GORM's CreatedAt convention so nil timestamps stay NULL instead of
// being auto-filled at insert time.
type ReviewModel struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	RestaurantID   int64      `gorm:"column:restaurant_id;index;uniqueIndex:ux_raw_reviews_dedup"`
	Source         string     `gorm:"column:source;uniqueIndex:ux_raw_reviews_dedup;size:64"`
	SourceReviewID *string    `gorm:"column:source_review_id;uniqueIndex:ux_raw_reviews_dedup;size:255"`
	Author         string     `gorm:"column:author;size:255"`
	Rating         float64    `gorm:"column:rating"`
	Text           string     `gorm:"column:text"`
	PostedAt       *time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (ReviewModel) TableName() string { return "raw_reviews" }
