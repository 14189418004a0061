package repository

// Constants for pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest represents pagination parameters for owner listings. Cursor is
// the opaque NextCursor of a previous page; callers must not build or
// interpret it, and it is not stable across writes.
type PageRequest struct {
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor,omitempty"`
}

// NewPageRequest creates a new PageRequest with the limit clamped to bounds.
func NewPageRequest(limit int, cursor string) PageRequest {
	return PageRequest{Limit: PageRequest{Limit: limit}.EffectiveLimit(), Cursor: cursor}
}

// EffectiveLimit returns the limit, falling back to DefaultPageSize when it is
// unset or out of bounds.
func (pr PageRequest) EffectiveLimit() int {
	if pr.Limit <= 0 || pr.Limit > MaxPageSize {
		return DefaultPageSize
	}
	return pr.Limit
}

// HasCursor returns true if the request continues a previous page.
func (pr PageRequest) HasCursor() bool {
	return pr.Cursor != ""
}

// Page is one page of results. NextCursor is empty on the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// HasMore reports whether another page can be requested.
func (p Page[T]) HasMore() bool {
	return p.NextCursor != ""
}
