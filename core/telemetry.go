package core

import "time"

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, tracing, etc.
//
// # Security Considerations
//
// Event types are designed to NEVER include sensitive data:
//   - Auth tokens are NEVER included (stored separately as core.Secret)
//   - Prompt content (user messages) is NEVER included
//   - Response content (model outputs) is NEVER included
//   - Only operational metadata is exposed (provider, model, timing, token counts)
//
// This design ensures that telemetry data can be safely logged to disk,
// sent to external monitoring systems, and stored long-term for debugging.
//
// If extending this interface, maintain these security properties. Never
// add fields that could contain: auth tokens, user prompts, or model
// responses.
type TelemetryHook interface {
	// OnRequestStart is called when a request to the service begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a request to the service completes.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Provider  string    // Provider identifier (e.g., "puter")
	Model     ModelID   // Model being called
	RequestID string    // Correlation ID generated per request
	Start     time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
//
// The Err field contains error types, not raw payloads, so events stay
// safe to ship to external sinks.
type RequestEndEvent struct {
	Provider  string     // Provider identifier
	Model     ModelID    // Model that was called
	RequestID string     // Correlation ID from the matching start event
	Start     time.Time  // When the request started
	End       time.Time  // When the request completed
	Usage     TokenUsage // Token consumption (zeroed when unknown, e.g. streams)
	Err       error      // Error if request failed, nil on success
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
// Use this as a default when no telemetry is configured.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

// Compile-time check that NoopTelemetryHook implements TelemetryHook.
var _ TelemetryHook = NoopTelemetryHook{}
