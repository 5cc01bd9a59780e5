// Package restaurant contains the canonical restaurant and review entities
// and the store contracts the ingestion pipeline writes through.
package restaurant

// Restaurant is the canonical place entity. It is keyed by a
// provider-scoped external identifier; the surrogate id is assigned by the
// store on first insert and never changes.
type Restaurant struct {
	id         int64
	externalID string
	name       string
	address    string
	city       string
	state      string
	zip        string
	cuisine    string
	lat        *float64
	lng        *float64
}

// New creates a Restaurant for the given external identifier.
func New(externalID string) Restaurant {
	return Restaurant{externalID: externalID}
}

// Reconstruct rebuilds a Restaurant from stored state.
func Reconstruct(id int64, externalID, name, address, city, state, zip, cuisine string, lat, lng *float64) Restaurant {
	return Restaurant{
		id:         id,
		externalID: externalID,
		name:       name,
		address:    address,
		city:       city,
		state:      state,
		zip:        zip,
		cuisine:    cuisine,
		lat:        lat,
		lng:        lng,
	}
}

// ID returns the store-assigned surrogate identifier (0 if unsaved).
func (r Restaurant) ID() int64 { return r.id }

// ExternalID returns the provider-scoped identifier.
func (r Restaurant) ExternalID() string { return r.externalID }

// Name returns the display name ("" when unknown).
func (r Restaurant) Name() string { return r.name }

// Address returns the street address ("" when unknown).
func (r Restaurant) Address() string { return r.address }

// City returns the city ("" when unknown).
func (r Restaurant) City() string { return r.city }

// State returns the state or region ("" when unknown).
func (r Restaurant) State() string { return r.state }

// Zip returns the postal code ("" when unknown).
func (r Restaurant) Zip() string { return r.zip }

// Cuisine returns the primary cuisine ("" when unknown).
func (r Restaurant) Cuisine() string { return r.cuisine }

// Lat returns the latitude, or nil when the provider supplied no
// coordinates. A nil latitude is never collapsed to 0, since (0, 0) is a
// valid coordinate.
func (r Restaurant) Lat() *float64 { return r.lat }

// Lng returns the longitude, or nil when unknown.
func (r Restaurant) Lng() *float64 { return r.lng }

// HasCoordinates reports whether both coordinates are present.
func (r Restaurant) HasCoordinates() bool {
	return r.lat != nil && r.lng != nil
}

// WithName returns a copy with the display name set.
func (r Restaurant) WithName(name string) Restaurant {
	r.name = name
	return r
}

// WithAddress returns a copy with the street address set.
func (r Restaurant) WithAddress(address string) Restaurant {
	r.address = address
	return r
}

// WithCity returns a copy with the city set.
func (r Restaurant) WithCity(city string) Restaurant {
	r.city = city
	return r
}

// WithState returns a copy with the state set.
func (r Restaurant) WithState(state string) Restaurant {
	r.state = state
	return r
}

// WithZip returns a copy with the postal code set.
func (r Restaurant) WithZip(zip string) Restaurant {
	r.zip = zip
	return r
}

// WithCuisine returns a copy with the primary cuisine set.
func (r Restaurant) WithCuisine(cuisine string) Restaurant {
	r.cuisine = cuisine
	return r
}

// WithCoordinates returns a copy with both coordinates set.
func (r Restaurant) WithCoordinates(lat, lng float64) Restaurant {
	r.lat = &lat
	r.lng = &lng
	return r
}

// WithID returns a copy with the surrogate id set. Used by stores after
// insert; the id of a saved entity never changes.
func (r Restaurant) WithID(id int64) Restaurant {
	r.id = id
	return r
}
