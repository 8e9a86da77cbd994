// Package otel bridges puterai telemetry events to OpenTelemetry traces.
package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fernlabs/puterai/core"
)

const tracerName = "github.com/fernlabs/puterai/contrib/otel"

// Hook implements core.TelemetryHook by emitting one client span per
// request. Start and end events are correlated by request ID, so the
// hook is safe for concurrent requests.
//
// Events carry operational metadata only (no prompts, no tokens), so
// the spans are safe to export to external collectors.
type Hook struct {
	tracer trace.Tracer
	spans  sync.Map // request ID -> trace.Span
}

// New creates a Hook backed by the global tracer provider.
func New() *Hook {
	return NewWithProvider(otel.GetTracerProvider())
}

// NewWithProvider creates a Hook backed by the given tracer provider.
func NewWithProvider(tp trace.TracerProvider) *Hook {
	return &Hook{
		tracer: tp.Tracer(tracerName),
	}
}

// OnRequestStart opens a span for the request.
func (h *Hook) OnRequestStart(e core.RequestStartEvent) {
	_, span := h.tracer.Start(context.Background(), "puterai.chat",
		trace.WithTimestamp(e.Start),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("puterai.provider", e.Provider),
			attribute.String("puterai.model", string(e.Model)),
			attribute.String("puterai.request_id", e.RequestID),
		),
	)
	h.spans.Store(e.RequestID, span)
}

// OnRequestEnd closes the span opened by the matching start event.
// End events without a matching start are dropped.
func (h *Hook) OnRequestEnd(e core.RequestEndEvent) {
	v, ok := h.spans.LoadAndDelete(e.RequestID)
	if !ok {
		return
	}
	span := v.(trace.Span)

	if e.Usage.TotalTokens > 0 {
		span.SetAttributes(
			attribute.Int("puterai.usage.prompt_tokens", e.Usage.PromptTokens),
			attribute.Int("puterai.usage.completion_tokens", e.Usage.CompletionTokens),
			attribute.Int("puterai.usage.total_tokens", e.Usage.TotalTokens),
		)
	}

	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(e.End))
}

// Compile-time check that Hook implements TelemetryHook.
var _ core.TelemetryHook = (*Hook)(nil)
