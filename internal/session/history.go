package session

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultHistorySize is the number of recent queries remembered per run.
const DefaultHistorySize = 20

// History is a bounded, most-recent-first list of submitted queries.
// Re-submitting a query moves it to the front. Not safe for concurrent use
// beyond what the underlying LRU provides.
type History struct {
	cache *lru.Cache[string, struct{}]
}

// NewHistory creates a History holding at most size queries.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		// Only returned for size <= 0.
		panic(err)
	}
	return &History{cache: cache}
}

// Add records query. Blank queries are ignored.
func (h *History) Add(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	// Remove first so a repeated query moves to the front.
	h.cache.Remove(query)
	h.cache.Add(query, struct{}{})
}

// Recent returns queries newest first.
func (h *History) Recent() []string {
	keys := h.cache.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[len(keys)-1-i] = k
	}
	return out
}

// Len returns the number of remembered queries.
func (h *History) Len() int {
	return h.cache.Len()
}
