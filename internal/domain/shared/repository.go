package shared

// DefaultPageSize is used when a caller asks for a page without a size
const DefaultPageSize = 20

// Filter selects one page of an ordered result. Repositories that return
// ordered chains ignore paging when PageSize is not positive.
type Filter struct {
	Page     int
	PageSize int
}

// Page returns a filter for the given page, clamping page to 1 and size to DefaultPageSize
func Page(page, pageSize int) Filter {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Filter{Page: page, PageSize: pageSize}
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Unpaged reports whether the filter asks for every row
func (f Filter) Unpaged() bool {
	return f.PageSize <= 0
}
