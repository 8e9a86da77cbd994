package core

import (
	"errors"
	"fmt"
	"strings"
)

// APIError represents an error returned by the service with full context.
type APIError struct {
	Status    int
	RequestID string
	Code      string
	Message   string
	Err       error
}

// Error implements the error interface. When an HTTP status was
// received, the message carries it in "status N" form so callers that
// match on message text can still recover it.
func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d", e.Status)
		if e.Code != "" {
			fmt.Fprintf(&b, ", code=%s", e.Code)
		}
		if e.RequestID != "" {
			fmt.Fprintf(&b, ", request_id=%s", e.RequestID)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying error for error chaining.
func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status that produced the error, or zero
// for transport-level failures. Retry classification keys off this.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// Sentinel errors for classification.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")
)

// Validation errors with actionable guidance.
var (
	ErrNoMessages      = errors.New("no messages: add at least one message using .System(), .User(), or .Assistant()")
	ErrToolArgsInvalid = errors.New("tool call arguments are not valid json")
)
