package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/fakebackend"
	"github.com/Aman-CERP/factcheck/internal/results"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestClient starts a fake backend and returns a client pointed at it.
func newTestClient(t *testing.T, opts ...fakebackend.Option) (*Client, *fakebackend.Server) {
	t.Helper()
	backend := fakebackend.New(opts...)
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	c, err := New(cfg)
	require.NoError(t, err)
	return c, backend
}

func scorePtr(f float64) *float64 { return &f }

func requireKind(t *testing.T, err error, kind ferrors.Kind) *ferrors.SearchError {
	t.Helper()
	require.Error(t, err)
	se, ok := ferrors.As(err)
	require.True(t, ok, "expected *SearchError, got %T", err)
	assert.Equal(t, kind, se.Kind)
	return se
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	requireKind(t, err, ferrors.KindConfig)
}

func TestNew_FillsDefaults(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultExpansionPath, c.cfg.ExpansionPath)
	assert.True(t, strings.HasPrefix(c.cfg.UserAgent, "factcheck/"))
}

func TestSearch_BuildsModeURLAndForwardsParameters(t *testing.T) {
	tests := []struct {
		mode Mode
		path string
	}{
		{ModeBoolean, fakebackend.PathBoolean},
		{ModeTFIDF, fakebackend.PathTFIDF},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			// Given: a backend
			c, backend := newTestClient(t)

			// When: searching with page 3 limit 7
			_, err := c.Search(context.Background(), tt.mode, "climate change", 3, 7)

			// Then: the mode endpoint saw the parameters verbatim
			require.NoError(t, err)
			req, ok := backend.LastRequest(tt.path)
			require.True(t, ok)
			assert.Equal(t, "climate change", req.Query.Get("q"))
			assert.Equal(t, "3", req.Query.Get("page"))
			assert.Equal(t, "7", req.Query.Get("limit"))
		})
	}
}

func TestSearch_SendsHeaders(t *testing.T) {
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, UserAgent: "factcheck/test"})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), ModeTFIDF, "x", 1, 10)

	require.NoError(t, err)
	h := <-headers
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "factcheck/test", h.Get("User-Agent"))
}

func TestSearch_DecodesResults(t *testing.T) {
	// Given: one boolean hit with a date and one with an odd sentiment
	c, backend := newTestClient(t)
	backend.SetResults("boolean", "vote",
		fakebackend.Document{Title: "T1", Summary: "S1", URL: "https://a", Sentiment: "Positive", Date: "2024-01-01"},
		fakebackend.Document{Title: "T2", Summary: "S2", URL: "https://b", Sentiment: "ecstatic"},
	)

	// When: searching
	got, err := c.Search(context.Background(), ModeBoolean, "vote", 1, 10)

	// Then: fields are mapped and unknown sentiment is normalised
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].Title)
	assert.Equal(t, results.SentimentPositive, got[0].Sentiment)
	require.NotNil(t, got[0].Date)
	assert.Equal(t, "2024-01-01", *got[0].Date)
	assert.Nil(t, got[0].Score)
	assert.Equal(t, results.SentimentUnknown, got[1].Sentiment)
	assert.Nil(t, got[1].Date)
}

func TestSearch_NonStringSentimentIsUnknown(t *testing.T) {
	// Given: sentiments encoded as a number, an object, a bool and null
	c, backend := newTestClient(t)
	backend.Respond(fakebackend.PathBoolean, http.StatusOK, `{"results":[
		{"title":"T1","summary":"S","url":"https://a","sentiment":0.8},
		{"title":"T2","summary":"S","url":"https://b","sentiment":{"label":"positive"}},
		{"title":"T3","summary":"S","url":"https://c","sentiment":true},
		{"title":"T4","summary":"S","url":"https://d","sentiment":null},
		{"title":"T5","summary":"S","url":"https://e","sentiment":"negative"}
	]}`)

	// When: searching
	got, err := c.Search(context.Background(), ModeBoolean, "vote", 1, 10)

	// Then: the search succeeds and only the string label is kept
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, r := range got[:4] {
		assert.Equal(t, results.SentimentUnknown, r.Sentiment, r.Title)
	}
	assert.Equal(t, results.SentimentNegative, got[4].Sentiment)
}

func TestSearch_DecodesScore(t *testing.T) {
	c, backend := newTestClient(t)
	backend.SetResults("tfidf", "q",
		fakebackend.Document{Title: "T", Summary: "S", URL: "u", Score: scorePtr(0.75)})

	got, err := c.Search(context.Background(), ModeTFIDF, "q", 1, 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Score)
	assert.InDelta(t, 0.75, *got[0].Score, 1e-9)
}

func TestSearch_EmptyResultsIsNotAnError(t *testing.T) {
	c, _ := newTestClient(t)

	got, err := c.Search(context.Background(), ModeTFIDF, "nothing matches", 1, 10)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_RejectsInvalidInputWithoutRequest(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		query string
		page  int
		limit int
	}{
		{"empty query", ModeTFIDF, "", 1, 10},
		{"whitespace query", ModeTFIDF, "   ", 1, 10},
		{"zero page", ModeTFIDF, "x", 0, 10},
		{"negative limit", ModeBoolean, "x", 1, -1},
		{"unknown mode", Mode("fuzzy"), "x", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, backend := newTestClient(t)

			_, err := c.Search(context.Background(), tt.mode, tt.query, tt.page, tt.limit)

			requireKind(t, err, ferrors.KindInvalidInput)
			assert.Empty(t, backend.Requests(), "no request should be sent")
		})
	}
}

func TestSearch_HTTPErrorCarriesStatus(t *testing.T) {
	// Given: the boolean endpoint answers 500
	c, backend := newTestClient(t)
	backend.Respond(fakebackend.PathBoolean, http.StatusInternalServerError, `{"error":"index offline"}`)

	// When: searching
	_, err := c.Search(context.Background(), ModeBoolean, "vote", 1, 10)

	// Then: an HTTP error with the status and endpoint
	se := requireKind(t, err, ferrors.KindHTTP)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, fakebackend.PathBoolean, se.Endpoint)
	assert.Contains(t, se.Details["body"], "index offline")
	assert.True(t, se.Retryable)
}

func TestSearch_HTTPErrorExcerptIsBounded(t *testing.T) {
	c, backend := newTestClient(t)
	backend.Respond(fakebackend.PathTFIDF, http.StatusBadGateway, strings.Repeat("x", 5000))

	_, err := c.Search(context.Background(), ModeTFIDF, "q", 1, 10)

	se := requireKind(t, err, ferrors.KindHTTP)
	assert.Len(t, se.Details["body"], maxErrorExcerptLength)
}

func TestSearch_4xxIsNotRetryable(t *testing.T) {
	c, backend := newTestClient(t)
	backend.Respond(fakebackend.PathTFIDF, http.StatusNotFound, ``)

	_, err := c.Search(context.Background(), ModeTFIDF, "q", 1, 10)

	se := requireKind(t, err, ferrors.KindHTTP)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.False(t, se.Retryable)
}

func TestSearch_MalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"bare array", `[]`},
		{"missing results", `{"items":[]}`},
		{"null results", `{"results":null}`},
		{"results not array", `{"results":{"title":"x"}}`},
		{"item not object", `{"results":["x"]}`},
		{"missing title", `{"results":[{"summary":"s","url":"u"}]}`},
		{"missing url", `{"results":[{"title":"t","summary":"s"}]}`},
		{"title wrong type", `{"results":[{"title":1,"summary":"s","url":"u"}]}`},
		{"score wrong type", `{"results":[{"title":"t","summary":"s","url":"u","score":"high"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, backend := newTestClient(t)
			backend.Respond(fakebackend.PathTFIDF, http.StatusOK, tt.body)

			_, err := c.Search(context.Background(), ModeTFIDF, "q", 1, 10)

			se := requireKind(t, err, ferrors.KindMalformed)
			assert.Equal(t, fakebackend.PathTFIDF, se.Endpoint)
		})
	}
}

func TestSearch_NetworkErrorWhenBackendDown(t *testing.T) {
	// Given: a server that has been shut down
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url})
	require.NoError(t, err)

	// When: searching
	_, err = c.Search(context.Background(), ModeTFIDF, "q", 1, 10)

	// Then: a network error with a hint
	se := requireKind(t, err, ferrors.KindNetwork)
	assert.NotEmpty(t, se.Suggestion)
}

func TestSearch_TimeoutIsNetworkError(t *testing.T) {
	// Given: a held request and a short client timeout
	backend := fakebackend.New()
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	release := backend.Hold(fakebackend.PathTFIDF, "slow")
	defer release()

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	// When: searching
	_, err = c.Search(context.Background(), ModeTFIDF, "slow", 1, 10)

	// Then: a timeout-coded network error
	se := requireKind(t, err, ferrors.KindNetwork)
	assert.Equal(t, ferrors.ErrCodeNetworkTimeout, se.Code)
}

func TestSearch_RetriesRetryableStatus(t *testing.T) {
	// Given: a backend that fails twice then recovers
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"t","summary":"s","url":"u"}]}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Retry.MaxRetries = 3
	cfg.Retry.InitialDelay = time.Millisecond
	cfg.Retry.Jitter = false
	c, err := New(cfg)
	require.NoError(t, err)

	// When: searching
	got, err := c.Search(context.Background(), ModeTFIDF, "q", 1, 10)

	// Then: the third attempt succeeds
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_ExhaustedRetriesReturnSearchError(t *testing.T) {
	c, backend := newTestClient(t)
	c.cfg.Retry.MaxRetries = 2
	c.cfg.Retry.InitialDelay = time.Millisecond
	backend.Respond(fakebackend.PathTFIDF, http.StatusInternalServerError, `{}`)

	_, err := c.Search(context.Background(), ModeTFIDF, "q", 1, 10)

	se := requireKind(t, err, ferrors.KindHTTP)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, 3, backend.RequestCount(fakebackend.PathTFIDF))
}

func TestSearch_CircuitBreakerOpensAfterFailures(t *testing.T) {
	// Given: a breaker-enabled client and a failing backend
	backend := fakebackend.New()
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	backend.Respond(fakebackend.PathTFIDF, http.StatusInternalServerError, `{}`)

	c, err := New(Config{BaseURL: srv.URL, CircuitBreaker: true})
	require.NoError(t, err)

	// When: failing five times
	for i := 0; i < 5; i++ {
		_, err := c.Search(context.Background(), ModeTFIDF, "q", 1, 10)
		requireKind(t, err, ferrors.KindHTTP)
	}

	// Then: the sixth call fails fast without reaching the backend
	_, err = c.Search(context.Background(), ModeTFIDF, "q", 1, 10)
	se := requireKind(t, err, ferrors.KindNetwork)
	assert.Equal(t, ferrors.ErrCodeCircuitOpen, se.Code)
	assert.Equal(t, 5, backend.RequestCount(fakebackend.PathTFIDF))
}

func TestSearch_CircuitBreakerIgnoresClientErrors(t *testing.T) {
	backend := fakebackend.New()
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	backend.Respond(fakebackend.PathTFIDF, http.StatusBadRequest, `{}`)

	c, err := New(Config{BaseURL: srv.URL, CircuitBreaker: true})
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		_, err := c.Search(context.Background(), ModeTFIDF, "q", 1, 10)
		requireKind(t, err, ferrors.KindHTTP)
	}
	assert.Equal(t, 8, backend.RequestCount(fakebackend.PathTFIDF))
}

func TestSearch_BaseURLWithPathPrefix(t *testing.T) {
	backend := fakebackend.New()
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", backend.Handler()))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/api/"})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), ModeTFIDF, "q", 1, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, backend.RequestCount(fakebackend.PathTFIDF))
}

func TestFetchExpansions(t *testing.T) {
	c, backend := newTestClient(t)
	backend.SetExpansions("climate", "climate change", "global warming")

	got, err := c.FetchExpansions(context.Background(), "climate")

	require.NoError(t, err)
	assert.Equal(t, []string{"climate change", "global warming"}, got)
}

func TestFetchExpansions_CustomPath(t *testing.T) {
	backend := fakebackend.New(fakebackend.WithExpansionPath("/suggest"))
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	backend.SetExpansions("a", "b")

	c, err := New(Config{BaseURL: srv.URL, ExpansionPath: "/suggest"})
	require.NoError(t, err)

	got, err := c.FetchExpansions(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)
}

func TestFetchExpansions_Malformed(t *testing.T) {
	for _, body := range []string{`null`, `{"suggestions":[]}`, `[1,2]`, `nope`} {
		t.Run(body, func(t *testing.T) {
			c, backend := newTestClient(t)
			backend.Respond(fakebackend.DefaultExpansionPath, http.StatusOK, body)

			_, err := c.FetchExpansions(context.Background(), "q")

			requireKind(t, err, ferrors.KindMalformed)
		})
	}
}

func TestFetchExpansions_EmptyQueryRejected(t *testing.T) {
	c, backend := newTestClient(t)

	_, err := c.FetchExpansions(context.Background(), " ")

	requireKind(t, err, ferrors.KindInvalidInput)
	assert.Zero(t, backend.RequestCount(fakebackend.DefaultExpansionPath))
}

func TestSearchGeneric_OmitsEmptyParameters(t *testing.T) {
	c, backend := newTestClient(t)

	_, err := c.SearchGeneric(context.Background(), "vote", GenericOptions{})

	require.NoError(t, err)
	req, ok := backend.LastRequest(fakebackend.PathGeneric)
	require.True(t, ok)
	assert.Equal(t, "vote", req.Query.Get("q"))
	assert.False(t, req.Query.Has("year"))
	assert.False(t, req.Query.Has("page"))
	assert.False(t, req.Query.Has("limit"))
}

func TestSearchGeneric_ForwardsOptionsAndAcceptsBareArray(t *testing.T) {
	// Given: a backend answering /search with a bare array
	c, backend := newTestClient(t, fakebackend.WithBareGenericArray())
	backend.SetResults("", "vote",
		fakebackend.Document{Title: "new", Summary: "s", URL: "u", Date: "2024-02-02"})

	// When: searching with every option
	got, err := c.SearchGeneric(context.Background(), "vote", GenericOptions{Year: "2024", Page: 1, Limit: 5})

	// Then: options are forwarded and the array is decoded
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Title)
	req, _ := backend.LastRequest(fakebackend.PathGeneric)
	assert.Equal(t, "2024", req.Query.Get("year"))
	assert.Equal(t, "5", req.Query.Get("limit"))
}

func TestProbe_PostsFieldAndReturnsRawJSON(t *testing.T) {
	c, backend := newTestClient(t)

	raw, err := c.Probe(context.Background(), "test")

	require.NoError(t, err)
	assert.Contains(t, string(raw), `"field":"test"`)
	req, ok := backend.LastRequest(fakebackend.PathProbe)
	require.True(t, ok)
	assert.JSONEq(t, `{"field":"test"}`, req.Body)
}

func TestProbe_InvalidJSONIsMalformed(t *testing.T) {
	c, backend := newTestClient(t)
	backend.Respond(fakebackend.PathProbe, http.StatusOK, `not json`)

	_, err := c.Probe(context.Background(), "test")

	requireKind(t, err, ferrors.KindMalformed)
}
