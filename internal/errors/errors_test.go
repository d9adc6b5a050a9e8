package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original transport error
	originalErr := errors.New("connection refused")

	// When: wrapping it as a network error
	se := NetworkError("dial backend", originalErr)

	// Then: unwrapping returns the original error
	require.NotNil(t, se)
	assert.Equal(t, originalErr, errors.Unwrap(se))
	assert.True(t, errors.Is(se, originalErr))
}

func TestSearchError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{"config", ErrCodeConfigInvalid, "bad base_url", "[ERR_102_CONFIG_INVALID] bad base_url"},
		{"network", ErrCodeNetworkTimeout, "request timed out", "[ERR_301_NETWORK_TIMEOUT] request timed out"},
		{"malformed", ErrCodeMalformedResponse, "missing results", "[ERR_402_MALFORMED_RESPONSE] missing results"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.code, tt.message, nil).Error())
		})
	}
}

func TestNew_DerivesKindFromCode(t *testing.T) {
	tests := []struct {
		code string
		kind Kind
	}{
		{ErrCodeConfigNotFound, KindConfig},
		{ErrCodeNetworkTimeout, KindNetwork},
		{ErrCodeNetworkUnavailable, KindNetwork},
		{ErrCodeCircuitOpen, KindNetwork},
		{ErrCodeHTTPStatus, KindHTTP},
		{ErrCodeMalformedResponse, KindMalformed},
		{ErrCodeInvalidInput, KindInvalidInput},
		{ErrCodeQueryEmpty, KindInvalidInput},
		{ErrCodeInternal, KindInternal},
		{"short", KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.kind, New(tt.code, "msg", nil).Kind)
		})
	}
}

func TestHTTPError_RetryableOnlyForServerSide(t *testing.T) {
	assert.True(t, HTTPError(500, "boom").Retryable)
	assert.True(t, HTTPError(503, "unavailable").Retryable)
	assert.True(t, HTTPError(429, "slow down").Retryable)
	assert.False(t, HTTPError(404, "not found").Retryable)
	assert.False(t, HTTPError(400, "bad request").Retryable)

	e := HTTPError(502, "bad gateway")
	assert.Equal(t, KindHTTP, e.Kind)
	assert.Equal(t, 502, e.StatusCode)
}

func TestSearchError_Is_MatchesByCode(t *testing.T) {
	err1 := MalformedResponse("missing results", nil)
	err2 := MalformedResponse("results is not an array", nil)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, NetworkError("x", nil)))
}

func TestAs_FindsWrappedSearchError(t *testing.T) {
	// Given: a SearchError wrapped with fmt.Errorf
	inner := HTTPError(500, "internal")
	wrapped := fmt.Errorf("search boolean: %w", inner)

	// Then: helpers see through the wrapping
	se, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, se)
	assert.True(t, IsKind(wrapped, KindHTTP))
	assert.Equal(t, ErrCodeHTTPStatus, GetCode(wrapped))
	assert.Equal(t, KindHTTP, GetKind(wrapped))
	assert.True(t, IsRetryable(wrapped))
}

func TestHelpers_PlainError(t *testing.T) {
	plain := errors.New("plain")

	_, ok := As(plain)
	assert.False(t, ok)
	assert.False(t, IsRetryable(plain))
	assert.False(t, IsKind(plain, KindNetwork))
	assert.Empty(t, GetCode(plain))
	assert.Empty(t, GetKind(plain))
	assert.False(t, IsRetryable(nil))
}

func TestSearchError_WithDetailAndSuggestion(t *testing.T) {
	e := ValidationError("page must be >= 1", nil).
		WithDetail("page", "0").
		WithEndpoint("/search/tfidf").
		WithSuggestion("Use a positive page number")

	assert.Equal(t, "0", e.Details["page"])
	assert.Equal(t, "/search/tfidf", e.Endpoint)
	assert.Equal(t, "Use a positive page number", e.Suggestion)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityFatal, ConfigError("bad", nil).Severity)
	assert.Equal(t, SeverityWarning, TimeoutError("slow", nil).Severity)
	assert.Equal(t, SeverityError, InternalError("oops", nil).Severity)
}
