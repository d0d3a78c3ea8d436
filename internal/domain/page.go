package domain

// Limits shared by every paged or bounded listing.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PaginationParams selects one page of a trip listing. Page is 1-based.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds PaginationParams from optional query values.
// A missing or non-positive page is 1; the limit goes through ClampLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil {
		p.Limit = ClampLimit(*limit)
	}
	return p
}

// ClampLimit maps a requested row count into 1..MaxLimit. Non-positive
// values fall back to DefaultLimit.
func ClampLimit(n int) int {
	switch {
	case n < 1:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Offset is the zero-based row offset for SQL OFFSET.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is the number of pages needed to list total rows.
func (p PaginationParams) TotalPages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
