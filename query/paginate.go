package query

// Paginate returns the requested page of items and the number of pages.
//
// Without pagination the whole sequence is one page and pageCount is 1, even
// for an empty sequence. Otherwise pageCount is the number of pageSize chunks,
// so an empty sequence has none. A page outside 1..pageCount is empty.
func Paginate[T any](items []T, spec *Pagination) ([]T, int) {
	if spec == nil {
		return items, 1
	}
	n := len(items)
	size := spec.PageSize
	if size <= 0 {
		size = n
	}
	if n == 0 {
		return items[:0], 0
	}
	pageCount := (n + size - 1) / size

	page := spec.Page
	if page == 0 {
		page = 1
	}
	if page < 1 || page > pageCount {
		return items[:0], pageCount
	}
	start := (page - 1) * size
	end := min(start+size, n)
	return items[start:end], pageCount
}
