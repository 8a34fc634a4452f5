package pagination

import (
	"math"

	"gorm.io/gorm"
)

// Default and upper bound for per_page.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// PageRequest holds 1-based pagination parameters parsed from query strings.
// Absent values take defaults; an explicit zero yields an empty page.
type PageRequest struct {
	Page    *int `form:"page" binding:"omitempty,min=0"`
	PerPage *int `form:"per_page" binding:"omitempty,min=0"`
}

// NewPageRequest builds a request with explicit values.
func NewPageRequest(page, perPage int) PageRequest {
	return PageRequest{Page: &page, PerPage: &perPage}
}

// Values returns page and per_page with defaults applied and per_page capped.
func (p PageRequest) Values() (page, perPage int) {
	page, perPage = 1, DefaultPerPage
	if p.Page != nil {
		page = *p.Page
	}
	if p.PerPage != nil {
		perPage = *p.PerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Empty reports whether the request can never select any rows.
func (p PageRequest) Empty() bool {
	page, perPage := p.Values()
	return page <= 0 || perPage <= 0
}

// InRange reports whether the page starts within a result set of total
// rows. Pages past the end select nothing, however large the page number.
func (p PageRequest) InRange(total int64) bool {
	if p.Empty() || total <= 0 {
		return false
	}
	page, perPage := p.Values()
	return int64(page-1) <= (total-1)/int64(perPage)
}

// Offset returns the SQL OFFSET for the current page, saturating instead of
// overflowing.
func (p PageRequest) Offset() int {
	page, perPage := p.Values()
	if page <= 0 || perPage <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data    []T   `json:"data"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
// HasNext is page*per_page < total.
func NewPageResponse[T any](data []T, page, perPage int, total int64) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:    data,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: hasNext(page, perPage, total),
	}
}

// hasNext computes page*per_page < total without multiplying.
func hasNext(page, perPage int, total int64) bool {
	if total <= 0 {
		return false
	}
	if page <= 0 || perPage <= 0 {
		return true
	}
	return int64(page) <= (total-1)/int64(perPage)
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		_, perPage := req.Values()
		return db.Offset(req.Offset()).Limit(perPage)
	}
}
