package fakebackend

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode identifies a backend error in the JSON error body.
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON    ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery   ErrorCode = "INVALID_QUERY"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// APIError is the error body sent with every non-2xx answer.
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// SendError writes a standardized error response and aborts the chain.
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	resp := &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
		RequestID: c.GetString(requestIDKey),
	}
	c.AbortWithStatusJSON(statusCode, resp)
}
