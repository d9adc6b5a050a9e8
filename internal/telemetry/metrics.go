// Package telemetry records local search statistics and the query history.
// All data stays in a SQLite file on this machine; nothing is reported.
package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketP50   LatencyBucket = "p50"   // <50ms
	BucketP200  LatencyBucket = "p200"  // 50-200ms
	BucketP500  LatencyBucket = "p500"  // 200-500ms
	BucketP2000 LatencyBucket = "p2000" // 500ms-2s
	BucketSlow  LatencyBucket = "slow"  // >=2s
)

// LatencyBuckets lists the buckets in ascending order.
var LatencyBuckets = []LatencyBucket{BucketP50, BucketP200, BucketP500, BucketP2000, BucketSlow}

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 50:
		return BucketP50
	case ms < 200:
		return BucketP200
	case ms < 500:
		return BucketP500
	case ms < 2000:
		return BucketP2000
	default:
		return BucketSlow
	}
}

// QueryEvent is one completed search.
type QueryEvent struct {
	Query       string
	Mode        string
	ResultCount int
	Latency     time.Duration
	Failed      bool
	Timestamp   time.Time
}

// IsZeroResult reports whether the search succeeded with no results.
func (e QueryEvent) IsZeroResult() bool {
	return !e.Failed && e.ResultCount == 0
}

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	mu       sync.RWMutex
	items    []T
	head     int
	size     int
	capacity int
}

// NewCircularBuffer creates a buffer holding at most capacity items.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends item, evicting the oldest when full.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns the buffered items oldest first.
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, 0, b.size)
	start := (b.head - b.size + b.capacity) % b.capacity
	for i := 0; i < b.size; i++ {
		out = append(out, b.items[(start+i)%b.capacity])
	}
	return out
}

// Size returns the number of buffered items.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// ExtractTerms lowercases query and returns its words of at least 3 bytes.
func ExtractTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) >= 3 {
			terms = append(terms, w)
		}
	}
	return terms
}

// TermCount represents a term and its frequency count.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is the in-memory view of what a Recorder saw in this run.
type Snapshot struct {
	ModeCounts          map[string]int64        `json:"mode_counts"`
	TopTerms            []TermCount             `json:"top_terms"`
	ZeroResultQueries   []string                `json:"zero_result_queries"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	TotalQueries        int64                   `json:"total_queries"`
	FailedQueries       int64                   `json:"failed_queries"`
	ZeroResultCount     int64                   `json:"zero_result_count"`
	ExactRepeatCount    int64                   `json:"exact_repeat_count"`
	UniqueQueryCount    int64                   `json:"unique_query_count"`
	Since               time.Time               `json:"since"`
}

// ZeroResultPercentage returns the share of searches that found nothing.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries) * 100
}

// RepetitionSummary describes how often queries were repeated.
func (s *Snapshot) RepetitionSummary() string {
	if s.TotalQueries == 0 {
		return "No queries recorded"
	}
	rate := float64(s.ExactRepeatCount) / float64(s.TotalQueries) * 100
	return fmt.Sprintf("repeated=%.1f%%, unique=%d", rate, s.UniqueQueryCount)
}

// Store persists telemetry. SQLiteStore implements it.
type Store interface {
	SaveModeCounts(date string, counts map[string]int64) error
	GetModeCounts(from, to string) (map[string]int64, error)
	UpsertTermCounts(terms map[string]int64) error
	GetTopTerms(limit int) ([]TermCount, error)
	AddZeroResultQuery(query string, timestamp time.Time) error
	GetZeroResultQueries(limit int) ([]string, error)
	SaveLatencyCounts(date string, counts map[LatencyBucket]int64) error
	GetLatencyCounts(from, to string) (map[LatencyBucket]int64, error)
	AddHistory(query string, timestamp time.Time) error
	RecentHistory(limit int) ([]string, error)
	Close() error
}

// Config configures a Recorder.
type Config struct {
	TopTermsCapacity    int           // Max terms tracked in memory (default: 100)
	ZeroResultsCapacity int           // Max zero-result queries kept in memory (default: 100)
	RecentQueries       int           // Queries remembered for repeat detection (default: 500)
	FlushInterval       time.Duration // Background flush period; 0 flushes only on Flush and Close
}

// DefaultConfig returns the defaults used by one-shot commands.
func DefaultConfig() Config {
	return Config{
		TopTermsCapacity:    100,
		ZeroResultsCapacity: 100,
		RecentQueries:       500,
	}
}

type timedQuery struct {
	query string
	at    time.Time
}

// pending holds what has been recorded but not yet flushed.
type pending struct {
	modes     map[string]int64
	terms     map[string]int64
	latencies map[LatencyBucket]int64
	zero      []timedQuery
	history   []timedQuery
}

func newPending() pending {
	return pending{
		modes:     make(map[string]int64),
		terms:     make(map[string]int64),
		latencies: make(map[LatencyBucket]int64),
	}
}

func (p pending) empty() bool {
	return len(p.modes) == 0 && len(p.terms) == 0 && len(p.latencies) == 0 &&
		len(p.zero) == 0 && len(p.history) == 0
}

// Recorder aggregates search events in memory and flushes them to a Store.
// Safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	modes           map[string]int64
	topTerms        *lru.Cache[string, int64]
	zeroResults     *CircularBuffer[string]
	latencies       map[LatencyBucket]int64
	recentQueries   *lru.Cache[string, struct{}]
	totalQueries    int64
	failedQueries   int64
	zeroResultCount int64
	repeatCount     int64
	startTime       time.Time
	now             func() time.Time

	store   Store
	pending pending
	stopCh  chan struct{}
	doneCh  chan struct{}
	closed  bool
}

// NewRecorder creates a Recorder. A nil store keeps everything in memory.
func NewRecorder(store Store, cfg Config) *Recorder {
	def := DefaultConfig()
	if cfg.TopTermsCapacity <= 0 {
		cfg.TopTermsCapacity = def.TopTermsCapacity
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = def.ZeroResultsCapacity
	}
	if cfg.RecentQueries <= 0 {
		cfg.RecentQueries = def.RecentQueries
	}

	topTerms, _ := lru.New[string, int64](cfg.TopTermsCapacity)
	recent, _ := lru.New[string, struct{}](cfg.RecentQueries)

	r := &Recorder{
		modes:         make(map[string]int64),
		topTerms:      topTerms,
		zeroResults:   NewCircularBuffer[string](cfg.ZeroResultsCapacity),
		latencies:     make(map[LatencyBucket]int64),
		recentQueries: recent,
		startTime:     time.Now(),
		now:           time.Now,
		store:         store,
		pending:       newPending(),
	}

	if cfg.FlushInterval > 0 && store != nil {
		r.stopCh = make(chan struct{})
		r.doneCh = make(chan struct{})
		go r.flushLoop(cfg.FlushInterval)
	}
	return r
}

func (r *Recorder) flushLoop(every time.Duration) {
	defer close(r.doneCh)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = r.Flush()
		case <-r.stopCh:
			return
		}
	}
}

// Record captures one search. Blank queries are ignored.
func (r *Recorder) Record(event QueryEvent) {
	query := strings.TrimSpace(event.Query)
	if query == "" {
		return
	}
	at := event.Timestamp
	if at.IsZero() {
		at = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.totalQueries++
	r.modes[event.Mode]++
	r.pending.modes[event.Mode]++
	r.pending.history = append(r.pending.history, timedQuery{query, at})

	key := strings.ToLower(query)
	if _, seen := r.recentQueries.Get(key); seen {
		r.repeatCount++
	}
	r.recentQueries.Add(key, struct{}{})

	if event.Failed {
		r.failedQueries++
		return
	}

	for _, term := range ExtractTerms(query) {
		count, _ := r.topTerms.Get(term)
		r.topTerms.Add(term, count+1)
		r.pending.terms[term]++
	}

	if event.IsZeroResult() {
		r.zeroResults.Add(query)
		r.zeroResultCount++
		r.pending.zero = append(r.pending.zero, timedQuery{query, at})
	}

	bucket := LatencyToBucket(event.Latency)
	r.latencies[bucket]++
	r.pending.latencies[bucket]++
}

// Snapshot returns what was recorded since the Recorder was created.
func (r *Recorder) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	modes := make(map[string]int64, len(r.modes))
	for k, v := range r.modes {
		modes[k] = v
	}
	latencies := make(map[LatencyBucket]int64, len(r.latencies))
	for k, v := range r.latencies {
		latencies[k] = v
	}

	var topTerms []TermCount
	for _, key := range r.topTerms.Keys() {
		if count, ok := r.topTerms.Peek(key); ok {
			topTerms = append(topTerms, TermCount{Term: key, Count: count})
		}
	}
	sortTerms(topTerms)

	return &Snapshot{
		ModeCounts:          modes,
		TopTerms:            topTerms,
		ZeroResultQueries:   r.zeroResults.Items(),
		LatencyDistribution: latencies,
		TotalQueries:        r.totalQueries,
		FailedQueries:       r.failedQueries,
		ZeroResultCount:     r.zeroResultCount,
		ExactRepeatCount:    r.repeatCount,
		UniqueQueryCount:    int64(r.recentQueries.Len()),
		Since:               r.startTime,
	}
}

// sortTerms orders by descending count, then term.
func sortTerms(terms []TermCount) {
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
}

// Flush writes everything recorded since the last flush to the store.
// Nothing is lost on failure; the next Flush retries it.
func (r *Recorder) Flush() error {
	if r.store == nil {
		return nil
	}

	r.mu.Lock()
	p := r.pending
	r.pending = newPending()
	r.mu.Unlock()

	if p.empty() {
		return nil
	}
	if err := r.write(p); err != nil {
		r.mu.Lock()
		r.pending = merge(p, r.pending)
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Recorder) write(p pending) error {
	today := r.now().Format("2006-01-02")

	if err := r.store.SaveModeCounts(today, p.modes); err != nil {
		return err
	}
	if err := r.store.UpsertTermCounts(p.terms); err != nil {
		return err
	}
	if err := r.store.SaveLatencyCounts(today, p.latencies); err != nil {
		return err
	}
	for _, z := range p.zero {
		if err := r.store.AddZeroResultQuery(z.query, z.at); err != nil {
			return err
		}
	}
	for _, h := range p.history {
		if err := r.store.AddHistory(h.query, h.at); err != nil {
			return err
		}
	}
	return nil
}

// merge folds newer into older. Part of older may already be stored when a
// flush failed halfway.
func merge(older, newer pending) pending {
	for k, v := range newer.modes {
		older.modes[k] += v
	}
	for k, v := range newer.terms {
		older.terms[k] += v
	}
	for k, v := range newer.latencies {
		older.latencies[k] += v
	}
	older.zero = append(older.zero, newer.zero...)
	older.history = append(older.history, newer.history...)
	return older
}

// Close stops background flushing and flushes one last time. The store is
// not closed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if r.stopCh != nil {
		close(r.stopCh)
		<-r.doneCh
	}
	return r.Flush()
}
