// Package client is the HTTP gateway to the document search backend.
//
// Every operation returns either a value or a *errors.SearchError; transport
// failures, non-2xx statuses and malformed bodies are all converted at this
// boundary and nothing else escapes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/results"
)

// Client talks to the search backend. It is safe for concurrent use and keeps
// no per-query state.
type Client struct {
	base    *url.URL
	cfg     Config
	http    *http.Client
	breaker *ferrors.CircuitBreaker
}

// New creates a Client. Only the base URL is validated; the backend is not
// contacted.
func New(cfg Config) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.ExpansionPath == "" {
		cfg.ExpansionPath = defaults.ExpansionPath
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry = defaults.Retry
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, ferrors.ConfigError(fmt.Sprintf("invalid backend base URL %q", cfg.BaseURL), err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No http.Client.Timeout: deadlines come from the request context.
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	c := &Client{base: base, cfg: cfg, http: httpClient}
	if cfg.CircuitBreaker {
		c.breaker = ferrors.NewCircuitBreaker("search-backend")
	}
	return c, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Search runs a ranked search in the given mode. page and limit are forwarded
// verbatim.
func (c *Client) Search(ctx context.Context, mode Mode, query string, page, limit int) ([]results.SearchResult, error) {
	if mode != ModeBoolean && mode != ModeTFIDF {
		return nil, ferrors.ValidationError(fmt.Sprintf("unknown search mode %q", mode), nil)
	}
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	if page < 1 || limit < 1 {
		return nil, ferrors.ValidationError(fmt.Sprintf("page and limit must be >= 1 (page=%d, limit=%d)", page, limit), nil)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, http.MethodGet, mode.path(), params, nil)
	if err != nil {
		return nil, err
	}
	out, derr := decodeEnvelope(body)
	if derr != nil {
		return nil, derr.WithEndpoint(mode.path())
	}
	return out, nil
}

// SearchGeneric queries the generic /search endpoint. Empty options are
// left out of the query string.
func (c *Client) SearchGeneric(ctx context.Context, query string, opts GenericOptions) ([]results.SearchResult, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	if opts.Year != "" {
		params.Set("year", opts.Year)
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	body, err := c.do(ctx, http.MethodGet, PathGeneric, params, nil)
	if err != nil {
		return nil, err
	}
	out, derr := decodeEnvelopeOrArray(body)
	if derr != nil {
		return nil, derr.WithEndpoint(PathGeneric)
	}
	return out, nil
}

// FetchExpansions returns alternate query suggestions for query.
func (c *Client) FetchExpansions(ctx context.Context, query string) ([]string, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)

	body, err := c.do(ctx, http.MethodGet, c.cfg.ExpansionPath, params, nil)
	if err != nil {
		return nil, err
	}
	out, derr := decodeExpansions(body)
	if derr != nil {
		return nil, derr.WithEndpoint(c.cfg.ExpansionPath)
	}
	return out, nil
}

// Probe posts {"field": field} to the diagnostic endpoint and returns the raw
// JSON reply.
func (c *Client) Probe(ctx context.Context, field string) (json.RawMessage, error) {
	payload, err := json.Marshal(probeRequest{Field: field})
	if err != nil {
		return nil, ferrors.InternalError("failed to encode probe request", err)
	}

	body, serr := c.do(ctx, http.MethodPost, PathProbe, nil, payload)
	if serr != nil {
		return nil, serr
	}
	if !json.Valid(body) {
		return nil, ferrors.MalformedResponse("probe response is not valid JSON", nil).WithEndpoint(PathProbe)
	}
	return json.RawMessage(bytes.TrimSpace(body)), nil
}

func validateQuery(query string) *ferrors.SearchError {
	if strings.TrimSpace(query) == "" {
		return ferrors.New(ferrors.ErrCodeQueryEmpty, "query is empty", nil)
	}
	return nil
}

// do performs one logical request under the retry and circuit breaker
// policies and returns the 2xx body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, *ferrors.SearchError) {
	attempt := func() ([]byte, error) {
		body, err := c.roundTrip(ctx, method, path, params, payload)
		if err != nil {
			return nil, err
		}
		return body, nil
	}

	call := attempt
	if c.breaker != nil {
		call = func() ([]byte, error) {
			return ferrors.CircuitExecute(c.breaker, attempt, ferrors.IsRetryable)
		}
	}

	body, err := ferrors.RetryWithResult(ctx, c.cfg.Retry, call)
	if err == nil {
		return body, nil
	}

	if errors.Is(err, ferrors.ErrCircuitOpen) {
		return nil, ferrors.New(ferrors.ErrCodeCircuitOpen, "search backend is failing; requests paused", err).
			WithEndpoint(path).
			WithSuggestion("Wait a few seconds and try again")
	}
	if se, ok := ferrors.As(err); ok {
		return nil, se
	}
	// Context cancelled between attempts.
	return nil, classifyTransportError(ctx, err).WithEndpoint(path)
}

// roundTrip sends a single HTTP request.
func (c *Client) roundTrip(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, *ferrors.SearchError) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, ferrors.InternalError("failed to create request", err).WithEndpoint(path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("backend_request_failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, classifyTransportError(ctx, err).WithEndpoint(path)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(ctx, err).WithEndpoint(path)
	}

	slog.Debug("backend_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("backend returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		e := ferrors.HTTPError(resp.StatusCode, msg).WithEndpoint(path)
		if excerpt := strings.TrimSpace(string(body)); excerpt != "" {
			if len(excerpt) > maxErrorExcerptLength {
				excerpt = excerpt[:maxErrorExcerptLength]
			}
			e.WithDetail("body", excerpt)
		}
		return nil, e
	}

	return body, nil
}

// classifyTransportError turns a transport-level failure into a network error,
// separating timeouts from everything else.
func classifyTransportError(ctx context.Context, err error) *ferrors.SearchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ferrors.TimeoutError("request to search backend timed out", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return ferrors.TimeoutError("request to search backend timed out", err)
	case errors.Is(err, context.Canceled):
		e := ferrors.NetworkError("request cancelled", err)
		e.Retryable = false
		return e
	default:
		return ferrors.NetworkError(err.Error(), err)
	}
}
