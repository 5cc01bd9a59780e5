package source

// Record is the provider-neutral shape of one business as returned by a
// source adapter. String fields are left empty when the provider omits
// them; Latitude and Longitude are nil when the provider supplies no
// coordinates (never zeroed, since 0,0 is a valid point).
type Record struct {
	ExternalID string
	Name       string
	Address    string
	City       string
	State      string
	Zip        string
	Cuisine    string
	Latitude   *float64
	Longitude  *float64
	Reviews    []ReviewRecord
}

// ReviewRecord is one review attached to a Record. PostedAt carries the
// provider's raw timestamp text; normalization parses it into a time.Time
// and nulls it when unparseable. SourceReviewID is empty for providers
// that do not expose stable review identifiers.
type ReviewRecord struct {
	SourceReviewID string
	Author         string
	Rating         float64
	Text           string
	PostedAt       string
}

// Stub is one search hit. Record is non-nil when the search response
// already carries the full business payload; otherwise FetchDetail
// resolves the ID into a Record.
type Stub struct {
	ID     string
	Record *Record
}

// Page is one search response: the stubs it carried plus the cursor for
// the next request.
type Page struct {
	Stubs []Stub
	Next  Cursor
}
