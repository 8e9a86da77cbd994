package puter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fernlabs/puterai/core"
)

// errorBodyLimit caps how much response body text is carried into an
// error message.
const errorBodyLimit = 512

// normalizeError converts an HTTP error response to an APIError with the
// appropriate sentinel. The message keeps the response body text so the
// cause survives into logs and retry classification.
func normalizeError(status int, body []byte, requestID string) error {
	var envelope driverCallResponse
	_ = json.Unmarshal(body, &envelope)

	var message, code string
	if envelope.Error != nil {
		message = envelope.Error.Message
		code = envelope.Error.Code
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
		if len(message) > errorBodyLimit {
			message = message[:errorBodyLimit]
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}

	var sentinel error
	switch {
	case status == http.StatusBadRequest:
		sentinel = core.ErrBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = core.ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = core.ErrNotFound
	case status == http.StatusTooManyRequests:
		sentinel = core.ErrRateLimited
	default:
		sentinel = core.ErrServer
	}

	return &core.APIError{
		Status:    status,
		RequestID: requestID,
		Code:      code,
		Message:   message,
		Err:       sentinel,
	}
}

// newNetworkError creates an APIError for network-related failures.
func newNetworkError(err error) error {
	return &core.APIError{
		Message: err.Error(),
		Err:     core.ErrNetwork,
	}
}

// newDecodeError creates an APIError for JSON decode failures.
func newDecodeError(err error) error {
	return &core.APIError{
		Message: err.Error(),
		Err:     core.ErrDecode,
	}
}
