package repository

import "math"

const (
	// DefaultPage is used when the requested page is missing or not positive.
	DefaultPage = 1
	// DefaultPaginationLimit is the default number of items per page.
	DefaultPaginationLimit = 10
	// MaxPaginationLimit caps the page size.
	MaxPaginationLimit = 100
	// MaxPage keeps the row offset inside a Postgres int4 regardless of the limit.
	MaxPage = math.MaxInt32/MaxPaginationLimit + 1
)

// Page is an offset-based page request. Build it with NewPage so both values are positive.
type Page struct {
	Number int
	Limit  int
}

// NewPage coerces page and limit to positive integers, falling back to the defaults
// and capping limit at MaxPaginationLimit and page at MaxPage.
func NewPage(page, limit int) Page {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPaginationLimit
	}
	return Page{
		Number: min(page, MaxPage),
		Limit:  min(limit, MaxPaginationLimit),
	}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
