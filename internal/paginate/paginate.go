// Package paginate derives the visible window over an ordered collection.
package paginate

import (
	"github.com/eventhub/event-gateway/internal/models"
)

// PageSizes is the fixed menu of allowed page sizes.
var PageSizes = []int{5, 10, 15}

// DefaultPageSize is the menu's first entry.
const DefaultPageSize = 5

// Paginator tracks the zero-based page index and the chosen page size.
type Paginator struct {
	page     int
	pageSize int
}

func New() *Paginator {
	return &Paginator{pageSize: DefaultPageSize}
}

// Page returns the current zero-based page index.
func (p *Paginator) Page() int { return p.page }

// PageSize returns the current page size.
func (p *Paginator) PageSize() int { return p.pageSize }

// SetPage moves to the given page. Negative pages clamp to 0; pages past the
// end of the collection yield an empty window rather than an error.
func (p *Paginator) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	p.page = page
}

// SetPageSize switches to a size from the menu and resets the page to 0, so
// the new window can never start past the end of the collection.
func (p *Paginator) SetPageSize(size int) error {
	if !AllowedSize(size) {
		return models.ErrInvalidPageSize
	}
	p.pageSize = size
	p.page = 0
	return nil
}

// Window returns the half-open range [from, to) currently visible over a
// collection of n items. The result always satisfies 0 <= from <= to <= n.
func (p *Paginator) Window(n int) (from, to int) {
	return Window(n, p.page, p.pageSize)
}

// PageCount returns the number of pages for a collection of n items.
func (p *Paginator) PageCount(n int) int {
	return PageCount(n, p.pageSize)
}

// Window computes the visible range for an explicit page and size.
func Window(n, page, pageSize int) (from, to int) {
	if n <= 0 || page < 0 || pageSize <= 0 {
		return 0, 0
	}
	// Pages at or past the end are empty. Checking against the page count
	// also keeps page*pageSize from overflowing for absurd page values.
	if page >= PageCount(n, pageSize) {
		return n, n
	}
	from = page * pageSize
	to = from + pageSize
	if to > n {
		to = n
	}
	return from, to
}

// PageCount computes ceil(n / pageSize), with an empty collection yielding 0.
func PageCount(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// AllowedSize reports whether size is on the menu.
func AllowedSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}
