package results

// Set is an immutable ordered sequence of results from one search call.
// The zero value is an empty set.
type Set struct {
	items []SearchResult
}

// NewSet copies items into a new Set.
func NewSet(items []SearchResult) *Set {
	cp := make([]SearchResult, len(items))
	copy(cp, items)
	return &Set{items: cp}
}

// Len returns the number of results.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Empty reports whether the set has no results.
func (s *Set) Empty() bool {
	return s.Len() == 0
}

// At returns the i-th result (0-based).
func (s *Set) At(i int) SearchResult {
	return s.items[i]
}

// All returns a copy of the results in rank order.
func (s *Set) All() []SearchResult {
	if s == nil {
		return nil
	}
	cp := make([]SearchResult, len(s.items))
	copy(cp, s.items)
	return cp
}

// Page returns the visible results for page and the total page count.
// The returned slice must not be modified.
func (s *Set) Page(page, pageSize int) ([]SearchResult, int) {
	if s == nil {
		return Paginate(nil, page, pageSize)
	}
	return Paginate(s.items, page, pageSize)
}

// TotalPages returns the page count for pageSize.
func (s *Set) TotalPages(pageSize int) int {
	return TotalPages(s.Len(), pageSize)
}
