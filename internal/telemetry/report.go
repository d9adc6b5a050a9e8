package telemetry

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultDataDir returns the telemetry directory: $FACTCHECK_DATA_DIR, or
// ~/.factcheck.
func DefaultDataDir() string {
	if dir := os.Getenv("FACTCHECK_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "factcheck")
	}
	return filepath.Join(home, ".factcheck")
}

// DefaultPath returns the telemetry database path.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "telemetry.db")
}

// Report is the stored telemetry over a date range.
type Report struct {
	From                string                  `json:"from"`
	To                  string                  `json:"to"`
	ModeCounts          map[string]int64        `json:"mode_counts"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	TopTerms            []TermCount             `json:"top_terms"`
	ZeroResultQueries   []string                `json:"zero_result_queries"`
	RecentQueries       []string                `json:"recent_queries"`
}

// TotalSearches sums the per-mode counts.
func (r *Report) TotalSearches() int64 {
	var n int64
	for _, c := range r.ModeCounts {
		n += c
	}
	return n
}

// LoadReport reads the last days days (today included) from store. List
// sections hold at most limit entries.
func LoadReport(store Store, days, limit int, now time.Time) (*Report, error) {
	if days < 1 {
		days = 1
	}
	to := now.Format("2006-01-02")
	from := now.AddDate(0, 0, -(days - 1)).Format("2006-01-02")

	modes, err := store.GetModeCounts(from, to)
	if err != nil {
		return nil, err
	}
	latencies, err := store.GetLatencyCounts(from, to)
	if err != nil {
		return nil, err
	}
	terms, err := store.GetTopTerms(limit)
	if err != nil {
		return nil, err
	}
	zero, err := store.GetZeroResultQueries(limit)
	if err != nil {
		return nil, err
	}
	recent, err := store.RecentHistory(limit)
	if err != nil {
		return nil, err
	}

	return &Report{
		From:                from,
		To:                  to,
		ModeCounts:          modes,
		LatencyDistribution: latencies,
		TopTerms:            nonNil(terms),
		ZeroResultQueries:   nonNil(zero),
		RecentQueries:       nonNil(recent),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
