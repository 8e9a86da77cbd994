package otel

import (
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/fernlabs/puterai/core"
)

func newTestHook() (*Hook, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewWithProvider(tp), recorder
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestHookEmitsSpan(t *testing.T) {
	hook, recorder := newTestHook()

	start := time.Now()
	end := start.Add(120 * time.Millisecond)

	hook.OnRequestStart(core.RequestStartEvent{
		Provider:  "puter",
		Model:     "gpt-5-nano",
		RequestID: "req-1",
		Start:     start,
	})
	hook.OnRequestEnd(core.RequestEndEvent{
		Provider:  "puter",
		Model:     "gpt-5-nano",
		RequestID: "req-1",
		Start:     start,
		End:       end,
		Usage: core.TokenUsage{
			PromptTokens:     12,
			CompletionTokens: 34,
			TotalTokens:      46,
		},
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	span := spans[0]

	if span.Name() != "puterai.chat" {
		t.Errorf("span.Name() = %q, want %q", span.Name(), "puterai.chat")
	}
	if span.SpanKind() != trace.SpanKindClient {
		t.Errorf("span.SpanKind() = %v, want %v", span.SpanKind(), trace.SpanKindClient)
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("span.Status().Code = %v, want %v", span.Status().Code, codes.Ok)
	}

	attrs := span.Attributes()
	if v, ok := attrValue(attrs, "puterai.provider"); !ok || v.AsString() != "puter" {
		t.Errorf("puterai.provider = %v, want %q", v.Emit(), "puter")
	}
	if v, ok := attrValue(attrs, "puterai.model"); !ok || v.AsString() != "gpt-5-nano" {
		t.Errorf("puterai.model = %v, want %q", v.Emit(), "gpt-5-nano")
	}
	if v, ok := attrValue(attrs, "puterai.request_id"); !ok || v.AsString() != "req-1" {
		t.Errorf("puterai.request_id = %v, want %q", v.Emit(), "req-1")
	}
	if v, ok := attrValue(attrs, "puterai.usage.total_tokens"); !ok || v.AsInt64() != 46 {
		t.Errorf("puterai.usage.total_tokens = %v, want 46", v.Emit())
	}

	if !span.StartTime().Equal(start) {
		t.Errorf("span.StartTime() = %v, want %v", span.StartTime(), start)
	}
	if !span.EndTime().Equal(end) {
		t.Errorf("span.EndTime() = %v, want %v", span.EndTime(), end)
	}
}

func TestHookRecordsError(t *testing.T) {
	hook, recorder := newTestHook()

	start := time.Now()
	reqErr := errors.New("rate limit exceeded")

	hook.OnRequestStart(core.RequestStartEvent{
		Provider:  "puter",
		Model:     "claude-sonnet-4-5",
		RequestID: "req-2",
		Start:     start,
	})
	hook.OnRequestEnd(core.RequestEndEvent{
		Provider:  "puter",
		Model:     "claude-sonnet-4-5",
		RequestID: "req-2",
		Start:     start,
		End:       start.Add(time.Second),
		Err:       reqErr,
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	span := spans[0]

	if span.Status().Code != codes.Error {
		t.Errorf("span.Status().Code = %v, want %v", span.Status().Code, codes.Error)
	}
	if span.Status().Description != "rate limit exceeded" {
		t.Errorf("span.Status().Description = %q, want %q", span.Status().Description, "rate limit exceeded")
	}
	if len(span.Events()) == 0 {
		t.Error("expected a recorded error event on the span")
	}

	// No usage on failed requests, so no usage attributes either.
	if _, ok := attrValue(span.Attributes(), "puterai.usage.total_tokens"); ok {
		t.Error("usage attributes should be absent when the request failed")
	}
}

func TestHookIgnoresUnmatchedEnd(t *testing.T) {
	hook, recorder := newTestHook()

	hook.OnRequestEnd(core.RequestEndEvent{
		Provider:  "puter",
		Model:     "gpt-5-nano",
		RequestID: "never-started",
		Start:     time.Now(),
		End:       time.Now(),
	})

	if n := len(recorder.Ended()); n != 0 {
		t.Errorf("len(spans) = %d, want 0", n)
	}
}

func TestHookConcurrentRequests(t *testing.T) {
	hook, recorder := newTestHook()

	start := time.Now()
	hook.OnRequestStart(core.RequestStartEvent{Provider: "puter", Model: "gpt-5-nano", RequestID: "a", Start: start})
	hook.OnRequestStart(core.RequestStartEvent{Provider: "puter", Model: "grok-4", RequestID: "b", Start: start})

	hook.OnRequestEnd(core.RequestEndEvent{Provider: "puter", Model: "grok-4", RequestID: "b", Start: start, End: start.Add(time.Millisecond)})
	hook.OnRequestEnd(core.RequestEndEvent{Provider: "puter", Model: "gpt-5-nano", RequestID: "a", Start: start, End: start.Add(2 * time.Millisecond)})

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("len(spans) = %d, want 2", len(spans))
	}

	models := map[string]bool{}
	for _, span := range spans {
		if v, ok := attrValue(span.Attributes(), "puterai.model"); ok {
			models[v.AsString()] = true
		}
	}
	if !models["gpt-5-nano"] || !models["grok-4"] {
		t.Errorf("models = %v, want both gpt-5-nano and grok-4", models)
	}
}
