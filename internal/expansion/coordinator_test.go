package expansion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTarget records what the coordinator does to it.
type fakeTarget struct {
	query       string
	tag         string
	suggestions []string
	state       State
	sets        int
}

func (f *fakeTarget) CurrentQuery() string { return f.query }

func (f *fakeTarget) SetExpansions(tag string, suggestions []string) {
	f.tag = tag
	f.suggestions = suggestions
	f.sets++
}

func (f *fakeTarget) SetExpansionState(state State) { f.state = state }

// stubFetcher answers from a map and counts calls.
type stubFetcher struct {
	answers map[string][]string
	err     error
	calls   []string
}

func (s *stubFetcher) FetchExpansions(_ context.Context, query string) ([]string, error) {
	s.calls = append(s.calls, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.answers[query], nil
}

func TestRequest_EmptyQueryClearsWithoutFetch(t *testing.T) {
	// Given: a target holding suggestions
	fetcher := &stubFetcher{}
	c := New(fetcher)
	target := &fakeTarget{tag: "old", suggestions: []string{"x"}, state: StateApplied}

	// When: requesting for a blank query
	_, ok := c.Request(target, "   ")

	// Then: suggestions are cleared, state is idle, nothing fetched
	assert.False(t, ok)
	assert.Empty(t, target.suggestions)
	assert.Empty(t, target.tag)
	assert.Equal(t, StateIdle, target.state)
	assert.Empty(t, fetcher.calls)
}

func TestRequest_TagsWithTrimmedQuery(t *testing.T) {
	c := New(&stubFetcher{})
	target := &fakeTarget{query: "climate"}

	req, ok := c.Request(target, " climate ")

	require.True(t, ok)
	assert.Equal(t, "climate", req.Tag)
	assert.Equal(t, StateFetching, target.state)
}

func TestApply_MatchingTagIsApplied(t *testing.T) {
	// Given: a fetch for the current query
	fetcher := &stubFetcher{answers: map[string][]string{"climate": {"climate change", "global warming"}}}
	c := New(fetcher)
	target := &fakeTarget{query: "climate"}
	req, _ := c.Request(target, "climate")

	// When: the response lands
	state := c.Apply(target, c.Fetch(context.Background(), req))

	// Then: suggestions are installed under the query's tag
	assert.Equal(t, StateApplied, state)
	assert.Equal(t, "climate", target.tag)
	assert.Equal(t, []string{"climate change", "global warming"}, target.suggestions)
	assert.Equal(t, StateApplied, target.state)
}

func TestApply_StaleTagIsDiscarded(t *testing.T) {
	c := New(&stubFetcher{})
	target := &fakeTarget{query: "b", tag: "b", suggestions: []string{"bee"}, state: StateApplied}

	state := c.Apply(target, Response{Tag: "a", Suggestions: []string{"ay"}})

	assert.Equal(t, StateDiscarded, state)
	assert.Equal(t, "b", target.tag)
	assert.Equal(t, []string{"bee"}, target.suggestions)
	assert.Equal(t, StateApplied, target.state)
	assert.Zero(t, target.sets)
}

func TestStalenessLaw_OutOfOrderResponses(t *testing.T) {
	// Given: A is requested, then the user moves on to B
	fetcher := &stubFetcher{answers: map[string][]string{
		"a": {"a1", "a2"},
		"b": {"b1"},
	}}
	c := New(fetcher)
	target := &fakeTarget{query: "a"}
	reqA, _ := c.Request(target, "a")
	respA := c.Fetch(context.Background(), reqA)

	target.query = "b"
	reqB, _ := c.Request(target, "b")
	respB := c.Fetch(context.Background(), reqB)

	// When: B's response lands first and A's after it
	stateB := c.Apply(target, respB)
	stateA := c.Apply(target, respA)

	// Then: B wins and A is discarded
	assert.Equal(t, StateApplied, stateB)
	assert.Equal(t, StateDiscarded, stateA)
	assert.Equal(t, "b", target.tag)
	assert.Equal(t, []string{"b1"}, target.suggestions)
}

func TestStalenessLaw_InOrderResponses(t *testing.T) {
	// A lands while still current, then B replaces it.
	fetcher := &stubFetcher{answers: map[string][]string{"a": {"a1"}, "b": {"b1"}}}
	c := New(fetcher)
	target := &fakeTarget{query: "a"}
	reqA, _ := c.Request(target, "a")
	respA := c.Fetch(context.Background(), reqA)
	assert.Equal(t, StateApplied, c.Apply(target, respA))

	target.query = "b"
	reqB, _ := c.Request(target, "b")
	assert.Equal(t, StateApplied, c.Apply(target, c.Fetch(context.Background(), reqB)))

	assert.Equal(t, "b", target.tag)
	assert.Equal(t, []string{"b1"}, target.suggestions)
}

func TestApply_FailedFetchAppliesEmptyList(t *testing.T) {
	// Given: a fetch that fails
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	c := New(fetcher)
	target := &fakeTarget{query: "q", tag: "q", suggestions: []string{"stale"}}
	req, _ := c.Request(target, "q")

	// When: the failed response lands
	resp := c.Fetch(context.Background(), req)
	state := c.Apply(target, resp)

	// Then: the list is empty and the error stays in the response
	require.Error(t, resp.Err)
	assert.Equal(t, StateApplied, state)
	assert.Empty(t, target.suggestions)
}

func TestRun_SynchronousRoundTrip(t *testing.T) {
	fetcher := &stubFetcher{answers: map[string][]string{"vote": {"voting", "vote", ""}}}
	c := New(fetcher)
	target := &fakeTarget{query: "vote"}

	state := c.Run(context.Background(), target, "vote")

	assert.Equal(t, StateApplied, state)
	assert.Equal(t, []string{"voting"}, target.suggestions)
	assert.Equal(t, StateIdle, c.Run(context.Background(), target, ""))
	assert.Len(t, fetcher.calls, 1)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		in    []string
		want  []string
	}{
		{"nil", "q", nil, []string{}},
		{"drops blanks", "q", []string{"", "  ", "a"}, []string{"a"}},
		{"drops query itself", "Climate", []string{"climate", "climate change"}, []string{"climate change"}},
		{"dedupes keeping first", "q", []string{"B", "a", "b", "A"}, []string{"B", "a"}},
		{"trims", "q", []string{"  spaced  "}, []string{"spaced"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.query, tt.in))
		})
	}
}
