package preflight

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/factcheck/internal/client"
	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/results"
)

// Backend is the part of the search client the backend checks use.
// *client.Client satisfies it.
type Backend interface {
	BaseURL() string
	Probe(ctx context.Context, field string) (json.RawMessage, error)
	Search(ctx context.Context, mode client.Mode, query string, page, limit int) ([]results.SearchResult, error)
	FetchExpansions(ctx context.Context, query string) ([]string, error)
}

// checkQuery is searched to exercise the ranking endpoints.
const checkQuery = "test"

// CheckBackend probes the backend and each endpoint concurrently. The probe
// and ranking endpoints are required; suggestions degrade to an empty list,
// so that check only warns.
func (c *Checker) CheckBackend(ctx context.Context) []CheckResult {
	checks := []func(context.Context) CheckResult{c.checkProbe}
	for _, mode := range client.Modes {
		checks = append(checks, func(ctx context.Context) CheckResult {
			return c.checkSearch(ctx, mode)
		})
	}
	checks = append(checks, c.checkExpansions)

	out := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			out[i] = check(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (c *Checker) checkProbe(ctx context.Context) CheckResult {
	result := CheckResult{
		Name:     "backend",
		Required: true,
	}
	start := time.Now()
	if _, err := c.backend.Probe(ctx, "preflight"); err != nil {
		return failed(result, err)
	}
	result.Status = StatusPass
	result.Message = fmt.Sprintf("reachable at %s (%s)", c.backend.BaseURL(), since(start))
	return result
}

func (c *Checker) checkSearch(ctx context.Context, mode client.Mode) CheckResult {
	result := CheckResult{
		Name:     "search_" + string(mode),
		Required: true,
	}
	start := time.Now()
	found, err := c.backend.Search(ctx, mode, checkQuery, 1, 1)
	if err != nil {
		return failed(result, err)
	}
	result.Status = StatusPass
	result.Message = fmt.Sprintf("OK, %d result(s) for %q (%s)", len(found), checkQuery, since(start))
	return result
}

func (c *Checker) checkExpansions(ctx context.Context) CheckResult {
	result := CheckResult{
		Name: "suggestions",
	}
	if _, err := c.backend.FetchExpansions(ctx, checkQuery); err != nil {
		result = failed(result, err)
		result.Status = StatusWarn
		result.Message += "; suggestions will be empty"
		return result
	}
	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// failed fills result from a client error.
func failed(result CheckResult, err error) CheckResult {
	result.Status = StatusFail
	result.Message = ferrors.FormatForUser(err)
	if se, ok := ferrors.As(err); ok {
		result.Details = se.Error()
		if se.Suggestion != "" {
			result.Details += " (" + se.Suggestion + ")"
		}
	}
	return result
}

func since(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
