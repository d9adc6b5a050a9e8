// Package expansion fetches "did you mean" suggestions and applies them only
// while the query they were computed for is still the current one.
//
// Requests are tagged with their query. A response is applied when its tag
// equals the target's current query at the moment it lands and is discarded
// otherwise, so the latest query always wins regardless of arrival order.
package expansion

import (
	"context"
	"log/slog"
	"strings"
)

// State is the lifecycle of the suggestion list.
type State string

const (
	// StateIdle means no suggestions were requested for the current query.
	StateIdle State = "idle"
	// StateFetching means a request tagged with the current query is in flight.
	StateFetching State = "fetching"
	// StateApplied means the suggestions match the current query.
	StateApplied State = "applied"
	// StateDiscarded is returned by Apply for a stale response. A target is
	// never put into this state.
	StateDiscarded State = "discarded"
)

// Target receives suggestions. It is implemented by the search session.
type Target interface {
	// CurrentQuery is the query suggestions must match to be applied.
	CurrentQuery() string
	// SetExpansions replaces the suggestion list and the query it belongs to.
	SetExpansions(tag string, suggestions []string)
	// SetExpansionState records the coordinator state.
	SetExpansionState(state State)
}

// Fetcher looks up suggestions. *client.Client satisfies it.
type Fetcher interface {
	FetchExpansions(ctx context.Context, query string) ([]string, error)
}

// Request is an in-flight suggestion lookup.
type Request struct {
	Tag string
}

// Response is the outcome of a lookup. Err is set when the fetch failed;
// Suggestions is then empty.
type Response struct {
	Tag         string
	Suggestions []string
	Err         error
}

// Coordinator issues tagged lookups and applies their responses.
type Coordinator struct {
	fetcher Fetcher
}

// New creates a Coordinator.
func New(fetcher Fetcher) *Coordinator {
	return &Coordinator{fetcher: fetcher}
}

// Request starts a lookup for query. An empty query clears the target's
// suggestions and returns false; no fetch should be issued.
func (c *Coordinator) Request(target Target, query string) (Request, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		target.SetExpansions("", nil)
		target.SetExpansionState(StateIdle)
		return Request{}, false
	}
	target.SetExpansionState(StateFetching)
	return Request{Tag: query}, true
}

// Fetch performs the lookup. It touches no target state and is safe to run
// off the event loop. Failures are carried in Response.Err.
func (c *Coordinator) Fetch(ctx context.Context, req Request) Response {
	suggestions, err := c.fetcher.FetchExpansions(ctx, req.Tag)
	if err != nil {
		slog.Debug("expansion_fetch_failed",
			slog.String("tag", req.Tag),
			slog.String("error", err.Error()))
		return Response{Tag: req.Tag, Err: err}
	}
	return Response{Tag: req.Tag, Suggestions: Normalize(req.Tag, suggestions)}
}

// Apply installs resp on target if its tag still matches the target's current
// query and returns StateApplied; otherwise the target is left untouched and
// StateDiscarded is returned. A failed fetch applies an empty list.
func (c *Coordinator) Apply(target Target, resp Response) State {
	current := target.CurrentQuery()
	if resp.Tag != current {
		slog.Debug("expansion_discarded",
			slog.String("tag", resp.Tag),
			slog.String("current_query", current))
		return StateDiscarded
	}

	suggestions := resp.Suggestions
	if resp.Err != nil {
		suggestions = nil
	}
	target.SetExpansions(resp.Tag, suggestions)
	target.SetExpansionState(StateApplied)
	return StateApplied
}

// Run requests, fetches and applies in one call.
func (c *Coordinator) Run(ctx context.Context, target Target, query string) State {
	req, ok := c.Request(target, query)
	if !ok {
		return StateIdle
	}
	return c.Apply(target, c.Fetch(ctx, req))
}

// Normalize drops blank entries, duplicates (case-insensitive) and the query
// itself from suggestions, keeping first-seen order.
func Normalize(query string, suggestions []string) []string {
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(query)): true}
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
