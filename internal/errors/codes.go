// Package errors provides structured error handling for factcheck.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 3XX: Network and HTTP errors
//   - 4XX: Validation and response-shape errors
//   - 5XX: Internal errors
package errors

// Kind is the discriminant of a SearchError as seen by the session layer.
type Kind string

const (
	// KindNetwork means the request could not be sent or completed.
	KindNetwork Kind = "network"
	// KindHTTP means the backend answered with a non-2xx status.
	KindHTTP Kind = "http"
	// KindMalformed means the body was not valid JSON or had the wrong shape.
	KindMalformed Kind = "malformed_response"
	// KindInvalidInput means the caller broke the client contract before any I/O.
	KindInvalidInput Kind = "invalid_input"
	// KindConfig covers configuration loading and validation.
	KindConfig Kind = "config"
	// KindInternal is everything else.
	KindInternal Kind = "internal"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Network errors (300-399)
	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"
	ErrCodeHTTPStatus         = "ERR_303_HTTP_STATUS"
	ErrCodeCircuitOpen        = "ERR_304_CIRCUIT_OPEN"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeMalformedResponse = "ERR_402_MALFORMED_RESPONSE"
	ErrCodeQueryEmpty        = "ERR_403_QUERY_EMPTY"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// kindFromCode extracts the kind from an error code.
func kindFromCode(code string) Kind {
	switch code {
	case ErrCodeHTTPStatus:
		return KindHTTP
	case ErrCodeMalformedResponse:
		return KindMalformed
	}

	if len(code) < 7 {
		return KindInternal
	}

	// Extract numeric portion (e.g., "301" from "ERR_301_NETWORK_TIMEOUT")
	switch code[4] {
	case '1':
		return KindConfig
	case '3':
		return KindNetwork
	case '4':
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	if code == ErrCodeConfigInvalid {
		return SeverityFatal
	}
	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
// HTTP status errors are decided per status code in HTTPError.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeNetworkTimeout, ErrCodeNetworkUnavailable:
		return true
	default:
		return false
	}
}
