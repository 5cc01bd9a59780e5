package source

// Cursor is an opaque pagination position. The zero Cursor requests the
// first page. Offset-based sources advance a numeric offset; token-based
// sources carry an opaque continuation token. A source marks exhaustion
// by returning End.
type Cursor struct {
	token  string
	offset int
	done   bool
}

// TokenCursor returns a cursor carrying an opaque continuation token.
func TokenCursor(token string) Cursor {
	return Cursor{token: token}
}

// OffsetCursor returns a cursor positioned at a numeric record offset.
func OffsetCursor(offset int) Cursor {
	return Cursor{offset: offset}
}

// End returns the exhausted cursor. AtEnd reports true for it.
func End() Cursor {
	return Cursor{done: true}
}

// Token returns the continuation token, empty for offset cursors.
func (c Cursor) Token() string {
	return c.token
}

// Offset returns the numeric offset, zero for token cursors.
func (c Cursor) Offset() int {
	return c.offset
}

// AtEnd reports whether the source has no further pages.
func (c Cursor) AtEnd() bool {
	return c.done
}
