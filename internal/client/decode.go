package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/results"
)

// decodeEnvelope extracts the results array from a {"results": [...]} body.
func decodeEnvelope(body []byte) ([]results.SearchResult, *ferrors.SearchError) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ferrors.MalformedResponse("response is not a JSON object", err)
	}

	raw, ok := envelope["results"]
	if !ok || isNull(raw) {
		return nil, ferrors.MalformedResponse(`response has no "results" field`, nil)
	}
	return decodeResults(raw)
}

// decodeEnvelopeOrArray accepts either {"results": [...]} or a bare array.
func decodeEnvelopeOrArray(body []byte) ([]results.SearchResult, *ferrors.SearchError) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeResults(trimmed)
	}
	return decodeEnvelope(body)
}

func decodeResults(raw json.RawMessage) ([]results.SearchResult, *ferrors.SearchError) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ferrors.MalformedResponse(`"results" is not an array`, err)
	}

	out := make([]results.SearchResult, 0, len(items))
	for i, item := range items {
		r, err := decodeResult(item)
		if err != nil {
			return nil, err.WithDetail("index", fmt.Sprint(i))
		}
		out = append(out, r)
	}
	return out, nil
}

func decodeResult(item json.RawMessage) (results.SearchResult, *ferrors.SearchError) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return results.SearchResult{}, ferrors.MalformedResponse("result is not a JSON object", nil)
	}

	var raw rawResult
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return results.SearchResult{}, ferrors.MalformedResponse("result has a field of the wrong type", err)
	}

	switch {
	case raw.Title == nil:
		return results.SearchResult{}, ferrors.MalformedResponse(`result is missing "title"`, nil)
	case raw.Summary == nil:
		return results.SearchResult{}, ferrors.MalformedResponse(`result is missing "summary"`, nil)
	case raw.URL == nil:
		return results.SearchResult{}, ferrors.MalformedResponse(`result is missing "url"`, nil)
	}

	r := results.SearchResult{
		Title:     *raw.Title,
		Summary:   *raw.Summary,
		URL:       *raw.URL,
		Sentiment: results.SentimentUnknown,
		Date:      raw.Date,
		Score:     raw.Score,
	}
	// Labels that are not strings fall back to unknown like unrecognised ones.
	var label string
	if len(raw.Sentiment) > 0 && json.Unmarshal(raw.Sentiment, &label) == nil {
		r.Sentiment = results.ParseSentiment(label)
	}
	return r, nil
}

// decodeExpansions parses a JSON array of strings.
func decodeExpansions(body []byte) ([]string, *ferrors.SearchError) {
	var out []string
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, ferrors.MalformedResponse("expansions response is not an array of strings", err)
	}
	if out == nil {
		return nil, ferrors.MalformedResponse("expansions response is null", nil)
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
