package ui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/factcheck/internal/client"
	"github.com/Aman-CERP/factcheck/internal/results"
	"github.com/Aman-CERP/factcheck/internal/session"
)

func strPtr(s string) *string      { return &s }
func floatPtr(f float64) *float64 { return &f }

func sessionWith(mode client.Mode, query string, n int) *session.Session {
	s := session.New(mode)
	s.Query = query
	s.Status = session.StatusSuccess
	s.Elapsed = 42 * time.Millisecond
	items := make([]results.SearchResult, n)
	for i := range items {
		items[i] = results.SearchResult{
			Title:     fmt.Sprintf("Doc %d", i+1),
			Summary:   fmt.Sprintf("Summary %d", i+1),
			URL:       fmt.Sprintf("https://example.org/%d", i+1),
			Sentiment: results.SentimentPositive,
			Date:      strPtr("2024-01-0" + fmt.Sprint(i%9+1)),
			Score:     floatPtr(0.5),
		}
	}
	s.Results = results.NewSet(items)
	return s
}

func render(s *session.Session) string {
	return Render(s, NoColorStyles(), RenderOptions{NoColor: true, ShowURLs: true, Selected: -1})
}

func TestRender_IdleSessionPrompts(t *testing.T) {
	out := render(session.New(client.ModeTFIDF))

	assert.Contains(t, out, "Enter a query")
	assert.NotContains(t, out, "Search Results")
}

func TestRender_HeadingPerMode(t *testing.T) {
	assert.Contains(t, render(sessionWith(client.ModeBoolean, "q", 1)), "Boolean Search Results")
	assert.Contains(t, render(sessionWith(client.ModeTFIDF, "q", 1)), "Tfidf Search Results")
}

func TestRender_BooleanShowsDateTFIDFShowsScore(t *testing.T) {
	boolean := render(sessionWith(client.ModeBoolean, "q", 1))
	assert.Contains(t, boolean, "Date: 2024-01-01")
	assert.NotContains(t, boolean, "Score:")

	tfidf := render(sessionWith(client.ModeTFIDF, "q", 1))
	assert.Contains(t, tfidf, "Score: 0.500")
	assert.NotContains(t, tfidf, "Date:")
}

func TestRender_PageTwoOfSeven(t *testing.T) {
	// Given: 7 results on page 2
	s := sessionWith(client.ModeTFIDF, "climate", 7)
	s.Page = 2

	// When: rendering
	out := render(s)

	// Then: results 6 and 7 are listed with global numbering
	assert.Contains(t, out, "6. Doc 6")
	assert.Contains(t, out, "7. Doc 7")
	assert.NotContains(t, out, "Doc 5")
	assert.Contains(t, out, "Page 2/2")
	assert.Contains(t, out, "[Positive]")
	assert.Contains(t, out, "https://example.org/7")
}

func TestRender_NoResults(t *testing.T) {
	out := render(sessionWith(client.ModeTFIDF, "nothing", 0))

	assert.Contains(t, out, "No results found")
	assert.NotContains(t, out, "Page ")
}

func TestRender_ErrorBannerKeepsResults(t *testing.T) {
	// Given: a failed boolean search over earlier results
	s := sessionWith(client.ModeBoolean, "vote", 2)
	s.Status = session.StatusError
	s.Err = errors.New("boom")
	s.ErrMessage = "Search service returned an error (status 500)"

	// When: rendering
	out := render(s)

	// Then: the banner comes first and the old results stay
	assert.True(t, strings.HasPrefix(out, "Error: Search service returned an error (status 500)"))
	assert.Contains(t, out, "Doc 1")
}

func TestRender_SuggestionsOnlyForCurrentQuery(t *testing.T) {
	s := sessionWith(client.ModeTFIDF, "climat", 1)
	s.SetExpansions("climat", []string{"climate", "climate change"})

	out := render(s)
	assert.Contains(t, out, "Did you mean: [1] climate [2] climate change")

	s.Query = "other"
	assert.NotContains(t, render(s), "Did you mean")
}

func TestRender_Searching(t *testing.T) {
	s := session.New(client.ModeTFIDF)
	s.Query = "q"
	s.Status = session.StatusSearching

	out := render(s)

	assert.Contains(t, out, "Searching...")
	assert.NotContains(t, out, "No results found")
}

func TestRender_SelectedMarker(t *testing.T) {
	s := sessionWith(client.ModeTFIDF, "q", 3)

	out := Render(s, NoColorStyles(), RenderOptions{NoColor: true, Selected: 1})

	assert.Contains(t, out, "> 2. Doc 2")
	assert.NotContains(t, out, "https://")
}

func TestRenderPlain_WritesToOutput(t *testing.T) {
	buf := &bytes.Buffer{}

	err := RenderPlain(sessionWith(client.ModeTFIDF, "q", 2), NewConfig(buf))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Tfidf Search Results")
	assert.Contains(t, buf.String(), "2 results in 42ms")
}

func TestRenderList(t *testing.T) {
	// Given: two generic results, one dated
	rs := []results.SearchResult{
		{Title: "Alpha", Summary: "first", URL: "https://a.example", Date: strPtr("2021-03-04")},
		{Title: "Beta", Summary: "second"},
	}

	// When: rendering without color
	out := RenderList("Results for 2021", rs, "", NoColorStyles(), RenderOptions{NoColor: true, ShowURLs: true, Selected: -1})

	// Then: both are numbered and the date is shown
	assert.Contains(t, out, "Results for 2021  2 results")
	assert.Contains(t, out, "1. Alpha")
	assert.Contains(t, out, "Date: 2021-03-04")
	assert.Contains(t, out, "2. Beta")
	assert.Contains(t, out, "https://a.example")
}

func TestRenderList_Empty(t *testing.T) {
	out := RenderList("Results", nil, client.ModeTFIDF, NoColorStyles(), RenderOptions{NoColor: true, Selected: -1})

	assert.Contains(t, out, "No results found")
}
