package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForUser returns the one-line message shown in the session error banner.
func FormatForUser(err error) string {
	if err == nil {
		return ""
	}

	se, ok := As(err)
	if !ok {
		return err.Error()
	}

	switch se.Kind {
	case KindNetwork:
		return "Could not reach the search service: " + se.Message
	case KindHTTP:
		return fmt.Sprintf("Search service returned an error (status %d)", se.StatusCode)
	case KindMalformed:
		return "Search service sent an unexpected response: " + se.Message
	default:
		return se.Message
	}
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	se, ok := As(err)
	if !ok {
		se = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", se.Message))
	if se.Endpoint != "" {
		sb.WriteString(fmt.Sprintf("  Endpoint: %s\n", se.Endpoint))
	}
	if se.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", se.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", se.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Kind       string            `json:"kind"`
	Message    string            `json:"message"`
	Severity   string            `json:"severity"`
	StatusCode int               `json:"status_code,omitempty"`
	Endpoint   string            `json:"endpoint,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	se, ok := As(err)
	if !ok {
		se = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       se.Code,
		Kind:       string(se.Kind),
		Message:    se.Message,
		Severity:   string(se.Severity),
		StatusCode: se.StatusCode,
		Endpoint:   se.Endpoint,
		Details:    se.Details,
		Suggestion: se.Suggestion,
		Retryable:  se.Retryable,
	}
	if se.Cause != nil {
		je.Cause = se.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) []any {
	if err == nil {
		return nil
	}

	se, ok := As(err)
	if !ok {
		return []any{"error", err.Error()}
	}

	attrs := []any{
		"error_code", se.Code,
		"kind", string(se.Kind),
		"message", se.Message,
		"retryable", se.Retryable,
	}
	if se.StatusCode != 0 {
		attrs = append(attrs, "status", se.StatusCode)
	}
	if se.Endpoint != "" {
		attrs = append(attrs, "endpoint", se.Endpoint)
	}
	if se.Cause != nil {
		attrs = append(attrs, "cause", se.Cause.Error())
	}
	for k, v := range se.Details {
		attrs = append(attrs, "detail_"+k, v)
	}
	return attrs
}
