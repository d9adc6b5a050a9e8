// Package session holds the state of one interactive search and the
// controller that drives it.
//
// A Session is a plain value owned by a single event loop. The Controller
// mutates it in response to user actions and network completions; network
// calls themselves touch no session state and may run on any goroutine.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/Aman-CERP/factcheck/internal/client"
	"github.com/Aman-CERP/factcheck/internal/expansion"
	"github.com/Aman-CERP/factcheck/internal/results"
)

// Status is the lifecycle state of the main search.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSearching Status = "searching"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Session is the client-held state of one search interaction.
type Session struct {
	// ID correlates log lines of one session.
	ID string

	// Query is the trimmed query of the latest submission.
	Query string

	// Mode is the active ranking mode.
	Mode client.Mode

	// Status of the main search.
	Status Status

	// Results of the last successful search. Kept on failure.
	Results *results.Set

	// Page is 1-based. No upper clamp; pages past the end show nothing.
	Page int

	// PageSize is fixed at results.DefaultPageSize.
	PageSize int

	// Expansions are the suggestions computed for ExpansionTag.
	Expansions []string

	// ExpansionTag is the query Expansions were computed for.
	ExpansionTag string

	// ExpansionState is the coordinator state for the current query.
	ExpansionState expansion.State

	// Err is the failure of the last search, nil unless Status is StatusError.
	Err error

	// ErrMessage is Err formatted for display.
	ErrMessage string

	// Elapsed is the duration of the last successful search.
	Elapsed time.Duration

	// seq identifies the latest submitted search; older responses are stale.
	seq uint64
}

// New creates an idle session in the given mode.
func New(mode client.Mode) *Session {
	return &Session{
		ID:             uuid.NewString(),
		Mode:           mode,
		Status:         StatusIdle,
		Results:        results.NewSet(nil),
		Page:           1,
		PageSize:       results.DefaultPageSize,
		ExpansionState: expansion.StateIdle,
	}
}

// CurrentQuery implements expansion.Target.
func (s *Session) CurrentQuery() string {
	return s.Query
}

// SetExpansions implements expansion.Target.
func (s *Session) SetExpansions(tag string, suggestions []string) {
	s.ExpansionTag = tag
	s.Expansions = suggestions
}

// SetExpansionState implements expansion.Target.
func (s *Session) SetExpansionState(state expansion.State) {
	s.ExpansionState = state
}

// Awaits reports whether resp answers the search the session is waiting on.
// Complete applies exactly those responses.
func (s *Session) Awaits(resp SearchResponse) bool {
	return s.Status == StatusSearching && resp.Seq == s.seq
}

// Searching reports whether a search is in flight.
func (s *Session) Searching() bool {
	return s.Status == StatusSearching
}

// Visible returns the results on the current page.
func (s *Session) Visible() []results.SearchResult {
	visible, _ := s.Results.Page(s.Page, s.PageSize)
	return visible
}

// TotalPages returns max(1, ceil(len(results)/pageSize)).
func (s *Session) TotalPages() int {
	return s.Results.TotalPages(s.PageSize)
}

// Suggestions returns the expansions if they belong to the current query.
func (s *Session) Suggestions() []string {
	if s.Query == "" || s.ExpansionTag != s.Query {
		return nil
	}
	return s.Expansions
}

// Snapshot is the read-only view of a session used for JSON output.
type Snapshot struct {
	ID          string                 `json:"id"`
	Query       string                 `json:"query"`
	Mode        client.Mode            `json:"mode"`
	Status      Status                 `json:"status"`
	Page        int                    `json:"page"`
	TotalPages  int                    `json:"total_pages"`
	Total       int                    `json:"total"`
	Results     []results.SearchResult `json:"results"`
	Suggestions []string               `json:"suggestions"`
	Error       string                 `json:"error,omitempty"`
	ElapsedMS   int64                  `json:"elapsed_ms"`
}

// Snapshot returns the current page and metadata.
func (s *Session) Snapshot() Snapshot {
	visible := s.Visible()
	if visible == nil {
		visible = []results.SearchResult{}
	}
	suggestions := s.Suggestions()
	if suggestions == nil {
		suggestions = []string{}
	}
	return Snapshot{
		ID:          s.ID,
		Query:       s.Query,
		Mode:        s.Mode,
		Status:      s.Status,
		Page:        s.Page,
		TotalPages:  s.TotalPages(),
		Total:       s.Results.Len(),
		Results:     visible,
		Suggestions: suggestions,
		Error:       s.ErrMessage,
		ElapsedMS:   s.Elapsed.Milliseconds(),
	}
}
