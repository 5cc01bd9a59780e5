package restaurant

// WithExternalID filters by the "external_id" column.
func WithExternalID(id string) Option {
	return WithCondition("external_id", id)
}

// WithRestaurantID filters reviews by the "restaurant_id" column.
func WithRestaurantID(id int64) Option {
	return WithCondition("restaurant_id", id)
}

// WithSource filters reviews by the "source" column.
func WithSource(source string) Option {
	return WithCondition("source", source)
}

// WithCity filters by the "city" column.
func WithCity(city string) Option {
	return WithCondition("city", city)
}

// WithCuisine filters by the "cuisine" column.
func WithCuisine(cuisine string) Option {
	return WithCondition("cuisine", cuisine)
}

// WithNewestFirst orders by the "created_at" column, newest first.
func WithNewestFirst() Option {
	return WithOrder("created_at", false)
}
