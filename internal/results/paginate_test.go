package results

import (
	"math"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResults(n int) []SearchResult {
	out := make([]SearchResult, n)
	for i := range out {
		out[i] = SearchResult{
			Title: fmt.Sprintf("doc-%d", i+1),
			URL:   fmt.Sprintf("https://example.com/%d", i+1),
		}
	}
	return out
}

func TestTotalPages_MinimumOne(t *testing.T) {
	for n := 0; n <= 23; n++ {
		want := (n + 4) / 5
		if want < 1 {
			want = 1
		}
		assert.Equal(t, want, TotalPages(n, 5), "n=%d", n)
	}
}

func TestTotalPages_NonPositivePageSizeUsesDefault(t *testing.T) {
	assert.Equal(t, 2, TotalPages(7, 0))
	assert.Equal(t, 2, TotalPages(7, -3))
}

func TestPaginate_SevenResults(t *testing.T) {
	// Given: 7 results and page size 5
	all := makeResults(7)

	// When: paginating page 1 and page 2
	first, total := Paginate(all, 1, 5)
	second, _ := Paginate(all, 2, 5)

	// Then: page 1 holds 1-5, page 2 holds 6-7
	assert.Equal(t, 2, total)
	require.Len(t, first, 5)
	assert.Equal(t, "doc-1", first[0].Title)
	assert.Equal(t, "doc-5", first[4].Title)
	require.Len(t, second, 2)
	assert.Equal(t, "doc-6", second[0].Title)
	assert.Equal(t, "doc-7", second[1].Title)
}

func TestPaginate_OutOfRangeIsEmpty(t *testing.T) {
	all := makeResults(7)

	tests := []struct {
		name string
		page int
	}{
		{"past end", 3},
		{"far past end", 100},
		{"offset overflows", 1844674407370955163},
		{"max int", math.MaxInt},
		{"zero", 0},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, total := Paginate(all, tt.page, 5)
			assert.NotNil(t, visible)
			assert.Empty(t, visible)
			assert.Equal(t, 2, total)
		})
	}
}

func TestPaginate_EmptySet(t *testing.T) {
	visible, total := Paginate(nil, 1, 5)

	assert.Empty(t, visible)
	assert.Equal(t, 1, total)
}

func TestPaginate_ExactMultiple(t *testing.T) {
	all := makeResults(10)

	last, total := Paginate(all, 2, 5)
	beyond, _ := Paginate(all, 3, 5)

	assert.Equal(t, 2, total)
	assert.Len(t, last, 5)
	assert.Empty(t, beyond)
}

func TestPaginate_Idempotent(t *testing.T) {
	all := makeResults(12)

	a, _ := Paginate(all, 2, 5)
	b, _ := Paginate(all, 2, 5)

	assert.Equal(t, a, b)
}
