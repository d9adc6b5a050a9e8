package results

import "sort"

// DefaultRRFConstant is the smoothing constant k used by Fuse.
const DefaultRRFConstant = 60

// FusedResult is a result placed by Reciprocal Rank Fusion across several
// ranked lists.
type FusedResult struct {
	SearchResult
	FusedScore float64 `json:"fused_score"`
	// Lists is the number of input lists that contained the document.
	Lists int `json:"lists"`
}

type fusedEntry struct {
	result FusedResult
	first  int
}

// Fuse merges ranked lists with Reciprocal Rank Fusion:
//
//	score(d) = sum over lists of 1 / (k + rank(d))
//
// where rank is 1-based. Documents are identified by URL, or by title when
// the URL is empty; the first occurrence supplies the displayed fields.
// Ties keep first-seen order. k <= 0 selects DefaultRRFConstant.
func Fuse(k int, lists ...[]SearchResult) []FusedResult {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	entries := make(map[string]*fusedEntry)
	next := 0
	for _, list := range lists {
		seen := make(map[string]bool)
		for rank, r := range list {
			key := fusionKey(r)
			if seen[key] {
				continue
			}
			seen[key] = true

			score := 1 / float64(k+rank+1)
			if e, ok := entries[key]; ok {
				e.result.FusedScore += score
				e.result.Lists++
				continue
			}
			entries[key] = &fusedEntry{
				result: FusedResult{SearchResult: r, FusedScore: score, Lists: 1},
				first:  next,
			}
			next++
		}
	}

	ordered := make([]*fusedEntry, 0, len(entries))
	for _, e := range entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].result.FusedScore != ordered[j].result.FusedScore {
			return ordered[i].result.FusedScore > ordered[j].result.FusedScore
		}
		return ordered[i].first < ordered[j].first
	})

	out := make([]FusedResult, len(ordered))
	for i, e := range ordered {
		out[i] = e.result
	}
	return out
}

func fusionKey(r SearchResult) string {
	if r.URL != "" {
		return "u:" + r.URL
	}
	return "t:" + r.Title
}
