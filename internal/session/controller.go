package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Aman-CERP/factcheck/internal/client"
	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/expansion"
	"github.com/Aman-CERP/factcheck/internal/results"
	"github.com/Aman-CERP/factcheck/internal/telemetry"
)

// DefaultLimit is the number of results requested from the backend per search.
// Pagination beyond it is client-side only.
const DefaultLimit = 10

// Backend is what the controller needs from the search service.
// *client.Client satisfies it.
type Backend interface {
	Search(ctx context.Context, mode client.Mode, query string, page, limit int) ([]results.SearchResult, error)
	expansion.Fetcher
}

// Recorder receives one event per applied search.
// *telemetry.Recorder satisfies it.
type Recorder interface {
	Record(event telemetry.QueryEvent)
}

// Config configures a Controller.
type Config struct {
	// Limit is the server-side result limit per search (default: 10).
	Limit int

	// HistorySize bounds the recent-query history (default: 20).
	HistorySize int

	// DisableExpansions skips suggestion lookups after successful searches.
	DisableExpansions bool

	// Recorder, when set, is told about every search that is applied to a
	// session. Superseded searches are not recorded.
	Recorder Recorder

	// InitialHistory seeds the history, newest first.
	InitialHistory []string
}

// SearchRequest is a submitted search waiting to be executed.
type SearchRequest struct {
	Seq       uint64
	SessionID string
	Query     string
	Mode      client.Mode
	Limit     int
}

// SearchResponse is the outcome of executing a SearchRequest.
type SearchResponse struct {
	Seq     uint64
	Query   string
	Mode    client.Mode
	Results []results.SearchResult
	Err     error
	Elapsed time.Duration
}

// Controller is the search session state machine. It holds no per-session
// state; every operation takes the session it acts on.
type Controller struct {
	backend     Backend
	expansions  *expansion.Coordinator
	history     *History
	limit       int
	noExpansion bool
	recorder    Recorder
	now         func() time.Time
}

// NewController creates a Controller over backend.
func NewController(backend Backend, cfg Config) *Controller {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	history := NewHistory(cfg.HistorySize)
	for i := len(cfg.InitialHistory) - 1; i >= 0; i-- {
		history.Add(cfg.InitialHistory[i])
	}
	return &Controller{
		backend:     backend,
		expansions:  expansion.New(backend),
		history:     history,
		limit:       limit,
		noExpansion: cfg.DisableExpansions,
		recorder:    cfg.Recorder,
		now:         time.Now,
	}
}

// History returns the recent-query history.
func (c *Controller) History() *History {
	return c.history
}

// Submit starts a search for query in mode. It returns false and leaves the
// session untouched when the trimmed query is empty, or when the same query
// and mode are already being searched. Otherwise the session enters
// StatusSearching on page 1 and any earlier in-flight search is superseded.
func (c *Controller) Submit(s *Session, query string, mode client.Mode) (SearchRequest, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchRequest{}, false
	}
	if s.Status == StatusSearching && s.Query == query && s.Mode == mode {
		return SearchRequest{}, false
	}

	s.seq++
	s.Query = query
	s.Mode = mode
	s.Status = StatusSearching
	s.Page = 1
	s.Err = nil
	s.ErrMessage = ""
	c.history.Add(query)

	slog.Info("search_started",
		slog.String("session_id", s.ID),
		slog.String("query", query),
		slog.String("mode", string(mode)),
		slog.Uint64("seq", s.seq))

	return SearchRequest{
		Seq:       s.seq,
		SessionID: s.ID,
		Query:     query,
		Mode:      mode,
		Limit:     c.limit,
	}, true
}

// Execute runs req against the backend. It reads and writes no session
// state, so it may run off the event loop.
func (c *Controller) Execute(ctx context.Context, req SearchRequest) SearchResponse {
	start := c.now()
	found, err := c.backend.Search(ctx, req.Mode, req.Query, 1, req.Limit)
	return SearchResponse{
		Seq:     req.Seq,
		Query:   req.Query,
		Mode:    req.Mode,
		Results: found,
		Err:     err,
		Elapsed: c.now().Sub(start),
	}
}

// Complete applies resp to the session. Responses for superseded searches
// are discarded. On success the results replace the old ones and an
// expansion request for the query is returned; the caller fetches it
// without blocking completion. On failure the previous results are kept.
func (c *Controller) Complete(s *Session, resp SearchResponse) (expansion.Request, bool) {
	if !s.Awaits(resp) {
		slog.Debug("search_discarded",
			slog.String("session_id", s.ID),
			slog.String("query", resp.Query),
			slog.Uint64("seq", resp.Seq),
			slog.Uint64("current_seq", s.seq))
		return expansion.Request{}, false
	}
	c.record(resp)

	if resp.Err != nil {
		s.Status = StatusError
		s.Err = resp.Err
		s.ErrMessage = ferrors.FormatForUser(resp.Err)
		attrs := append([]any{
			slog.String("session_id", s.ID),
			slog.String("query", resp.Query),
			slog.String("mode", string(resp.Mode)),
		}, ferrors.FormatForLog(resp.Err)...)
		slog.Warn("search_failed", attrs...)
		return expansion.Request{}, false
	}

	s.Results = results.NewSet(resp.Results)
	s.Status = StatusSuccess
	s.Page = 1
	s.Elapsed = resp.Elapsed

	slog.Info("search_complete",
		slog.String("session_id", s.ID),
		slog.String("query", resp.Query),
		slog.String("mode", string(resp.Mode)),
		slog.Int("results", s.Results.Len()),
		slog.Duration("elapsed", resp.Elapsed))

	if c.noExpansion {
		return expansion.Request{}, false
	}
	return c.expansions.Request(s, s.Query)
}

func (c *Controller) record(resp SearchResponse) {
	if c.recorder == nil {
		return
	}
	c.recorder.Record(telemetry.QueryEvent{
		Query:       resp.Query,
		Mode:        string(resp.Mode),
		ResultCount: len(resp.Results),
		Latency:     resp.Elapsed,
		Failed:      resp.Err != nil,
		Timestamp:   c.now(),
	})
}

// FetchExpansions performs an expansion request. Like Execute, it touches no
// session state.
func (c *Controller) FetchExpansions(ctx context.Context, req expansion.Request) expansion.Response {
	return c.expansions.Fetch(ctx, req)
}

// ApplyExpansions installs resp if it still matches the session's query.
func (c *Controller) ApplyExpansions(s *Session, resp expansion.Response) expansion.State {
	return c.expansions.Apply(s, resp)
}

// ChangePage moves to page p. Pages below 1 are rejected; there is no upper
// clamp. The backend is not contacted.
func (c *Controller) ChangePage(s *Session, p int) bool {
	if p < 1 {
		return false
	}
	s.Page = p
	return true
}

// NextPage advances one page if the current page is not the last.
func (c *Controller) NextPage(s *Session) bool {
	if s.Page >= s.TotalPages() {
		return false
	}
	return c.ChangePage(s, s.Page+1)
}

// PrevPage goes back one page.
func (c *Controller) PrevPage(s *Session) bool {
	return c.ChangePage(s, s.Page-1)
}

// SetMode switches the ranking mode and resets to page 1. With an active
// query the search is re-submitted in the new mode.
func (c *Controller) SetMode(s *Session, mode client.Mode) (SearchRequest, bool) {
	if mode == s.Mode {
		return SearchRequest{}, false
	}
	if s.Query == "" {
		s.Mode = mode
		s.Page = 1
		return SearchRequest{}, false
	}
	return c.Submit(s, s.Query, mode)
}

// SelectSuggestion replaces the query with suggestion and starts a new search
// in the current mode.
func (c *Controller) SelectSuggestion(s *Session, suggestion string) (SearchRequest, bool) {
	return c.Submit(s, suggestion, s.Mode)
}

// Search runs a full cycle synchronously: submit, execute, complete, and
// fetch expansions inline. It is meant for one-shot commands.
func (c *Controller) Search(ctx context.Context, s *Session, query string, mode client.Mode) error {
	req, ok := c.Submit(s, query, mode)
	if !ok {
		if strings.TrimSpace(query) == "" {
			return ferrors.New(ferrors.ErrCodeQueryEmpty, "query is empty", nil)
		}
		return nil
	}

	resp := c.Execute(ctx, req)
	expReq, fetch := c.Complete(s, resp)
	if resp.Err != nil {
		return resp.Err
	}
	if fetch {
		c.ApplyExpansions(s, c.FetchExpansions(ctx, expReq))
	}
	return nil
}
