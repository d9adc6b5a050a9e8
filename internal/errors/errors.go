package errors

import (
	"errors"
	"fmt"
)

// SearchError is the structured error type returned across the client boundary.
// Callers switch on Kind; everything else is context for logs and users.
type SearchError struct {
	// Code is the unique error code (e.g., "ERR_303_HTTP_STATUS").
	Code string

	// Kind is the discriminant derived from Code.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// Severity is the error severity level.
	Severity Severity

	// StatusCode is the HTTP status for KindHTTP errors, zero otherwise.
	StatusCode int

	// Endpoint is the request path that failed, when known.
	Endpoint string

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is matches another SearchError by code.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *SearchError) WithDetail(key, value string) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *SearchError) WithSuggestion(suggestion string) *SearchError {
	e.Suggestion = suggestion
	return e
}

// WithEndpoint records the request path that failed.
func (e *SearchError) WithEndpoint(endpoint string) *SearchError {
	e.Endpoint = endpoint
	return e
}

// New creates a SearchError. Kind, severity and retryability come from the code.
func New(code string, message string, cause error) *SearchError {
	return &SearchError{
		Code:      code,
		Kind:      kindFromCode(code),
		Message:   message,
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SearchError from an existing error.
func Wrap(code string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NetworkError creates an error for a request that could not be sent or completed.
func NetworkError(message string, cause error) *SearchError {
	return New(ErrCodeNetworkUnavailable, message, cause).
		WithSuggestion("Check that the search backend is running and the base URL is correct")
}

// TimeoutError creates a network error for a request that hit its deadline.
func TimeoutError(message string, cause error) *SearchError {
	return New(ErrCodeNetworkTimeout, message, cause)
}

// HTTPError creates an error for a non-2xx response.
// 5xx and 429 are retryable, other statuses are not.
func HTTPError(status int, message string) *SearchError {
	e := New(ErrCodeHTTPStatus, message, nil)
	e.StatusCode = status
	e.Retryable = status >= 500 || status == 429
	return e
}

// MalformedResponse creates an error for an unparseable or wrongly shaped body.
func MalformedResponse(message string, cause error) *SearchError {
	return New(ErrCodeMalformedResponse, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *SearchError {
	return New(ErrCodeInvalidInput, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SearchError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SearchError {
	return New(ErrCodeInternal, message, cause)
}

// As extracts a *SearchError from an error chain.
func As(err error) (*SearchError, bool) {
	var se *SearchError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if se, ok := As(err); ok {
		return se.Retryable
	}
	return false
}

// IsKind reports whether err is a SearchError of the given kind.
func IsKind(err error, kind Kind) bool {
	if se, ok := As(err); ok {
		return se.Kind == kind
	}
	return false
}

// GetCode extracts the error code. Returns empty string if not a SearchError.
func GetCode(err error) string {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}

// GetKind extracts the kind. Returns empty string if not a SearchError.
func GetKind(err error) Kind {
	if se, ok := As(err); ok {
		return se.Kind
	}
	return ""
}
