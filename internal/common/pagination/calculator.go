package pagination

// Offset computes the 0-based offset of a 1-based page.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// TotalPages computes the page count for a collection, rounding up.
// An empty collection still has one (empty) page.
func TotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Paginate slices one page out of an in-memory collection and builds the
// matching metadata. Pages past the end yield an empty (non-nil) slice, so
// callers can walk pages until they see one shorter than the limit.
func Paginate[T any](items []T, params Params) ([]T, Metadata) {
	metadata := Metadata{
		Total:      int64(len(items)),
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: TotalPages(int64(len(items)), params.Limit),
	}

	start := Offset(params.Page, params.Limit)
	if start >= len(items) {
		return []T{}, metadata
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], metadata
}
