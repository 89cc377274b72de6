package models

import "time"

// HeadlineFilter narrows headline queries. Zero fields are ignored.
type HeadlineFilter struct {
	Text     string     `json:"q,omitempty"`
	Category string     `json:"category,omitempty"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

// IsEmpty reports whether the filter matches everything.
func (f HeadlineFilter) IsEmpty() bool {
	return f.Text == "" && f.Category == "" && f.From == nil && f.To == nil
}

// Sort keys accepted by Page.SortBy.
const (
	SortByCreatedAt = "created_at"
	SortByCategory  = "category"
)

// Page controls pagination and ordering.
type Page struct {
	Limit      int    `json:"limit"`
	Skip       int    `json:"skip"`
	SortBy     string `json:"sort_by"`
	Descending bool   `json:"descending"`
}

// DefaultPage mirrors the listing default: newest first, 100 rows.
func DefaultPage() Page {
	return Page{Limit: 100, SortBy: SortByCreatedAt, Descending: true}
}
