package results

// DefaultPageSize is the fixed number of results per visible page.
const DefaultPageSize = 5

// TotalPages returns ceil(n/pageSize), never less than 1.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the slice of results visible on page (1-based) and the
// total page count. Out-of-range pages yield an empty slice, not an error.
func Paginate(results []SearchResult, page, pageSize int) ([]SearchResult, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(results), pageSize)
	if page < 1 || page > total {
		return []SearchResult{}, total
	}

	start := (page - 1) * pageSize
	if start >= len(results) {
		return []SearchResult{}, total
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end], total
}
