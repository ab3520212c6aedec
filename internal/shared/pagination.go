package shared

import (
	"math"

	"github.com/backoffice/admin-system/internal/platform/httpx"
)

// MaxPerPage caps listing page sizes.
const MaxPerPage = 100

// DefaultPerPage is used when a listing does not ask for a page size.
var DefaultPerPage = 15

// PageRequest is the normalised page/per_page pair of a listing.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps page and perPage to sane bounds.
func NewPageRequest(page, perPage int) PageRequest {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Wire converts the metadata to its JSON form.
func (p Pagination) Wire() httpx.Pagination {
	return httpx.Pagination{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages}
}
