package puter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fernlabs/puterai/core"
)

func TestMapMessages(t *testing.T) {
	msgs := []core.Message{
		{Role: core.RoleSystem, Content: "You are helpful."},
		{Role: core.RoleUser, Content: "Hello"},
		{Role: core.RoleAssistant, Content: "Hi there!"},
	}

	result := mapMessages(msgs)

	if len(result) != 3 {
		t.Fatalf("len(result) = %d, want 3", len(result))
	}

	if result[0].Role != "system" {
		t.Errorf("result[0].Role = %q, want system", result[0].Role)
	}
	if result[0].Content != "You are helpful." {
		t.Errorf("result[0].Content = %q, want 'You are helpful.'", result[0].Content)
	}

	if result[1].Role != "user" {
		t.Errorf("result[1].Role = %q, want user", result[1].Role)
	}

	if result[2].Role != "assistant" {
		t.Errorf("result[2].Role = %q, want assistant", result[2].Role)
	}
}

func TestMapMessagesToolResult(t *testing.T) {
	msgs := []core.Message{
		{Role: core.RoleTool, Content: `{"temp":12}`, ToolCallID: "call_1"},
	}

	result := mapMessages(msgs)

	if len(result) != 1 {
		t.Fatalf("len(result) = %d, want 1", len(result))
	}
	if result[0].Role != "tool" {
		t.Errorf("Role = %q, want tool", result[0].Role)
	}
	if result[0].ToolCallID != "call_1" {
		t.Errorf("ToolCallID = %q, want call_1", result[0].ToolCallID)
	}
}

func TestMapMessagesEchoesToolCalls(t *testing.T) {
	msgs := []core.Message{
		{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{
				{ID: "call_1", Name: "get_weather", Arguments: json.RawMessage(`{"city":"Oslo"}`)},
			},
		},
	}

	result := mapMessages(msgs)

	if len(result[0].ToolCalls) != 1 {
		t.Fatalf("len(ToolCalls) = %d, want 1", len(result[0].ToolCalls))
	}
	call := result[0].ToolCalls[0]
	if call.ID != "call_1" {
		t.Errorf("ID = %q, want call_1", call.ID)
	}
	if call.Type != "function" {
		t.Errorf("Type = %q, want function", call.Type)
	}
	if call.Function.Name != "get_weather" {
		t.Errorf("Function.Name = %q, want get_weather", call.Function.Name)
	}
	if call.Function.Arguments != `{"city":"Oslo"}` {
		t.Errorf("Function.Arguments = %q, want %q", call.Function.Arguments, `{"city":"Oslo"}`)
	}
}

func TestMapTools(t *testing.T) {
	specs := []core.ToolSpec{
		{
			Type: "function",
			Function: core.ToolFunction{
				Name:        "get_weather",
				Description: "Get the weather for a city",
				Parameters:  json.RawMessage(`{"type":"object"}`),
			},
		},
	}

	result := mapTools(specs)

	if len(result) != 1 {
		t.Fatalf("len(result) = %d, want 1", len(result))
	}
	if result[0].Type != "function" {
		t.Errorf("Type = %q, want function", result[0].Type)
	}
	if result[0].Function.Name != "get_weather" {
		t.Errorf("Function.Name = %q, want get_weather", result[0].Function.Name)
	}
	if string(result[0].Function.Parameters) != `{"type":"object"}` {
		t.Errorf("Parameters = %s, want %s", result[0].Function.Parameters, `{"type":"object"}`)
	}
}

func TestMapToolsNilParameters(t *testing.T) {
	specs := []core.ToolSpec{
		{Type: "function", Function: core.ToolFunction{Name: "noop"}},
	}

	result := mapTools(specs)

	if string(result[0].Function.Parameters) != `{}` {
		t.Errorf("Parameters = %s, want {}", result[0].Function.Parameters)
	}
}

func TestMapToolsEmpty(t *testing.T) {
	if mapTools(nil) != nil {
		t.Error("mapTools(nil) should be nil")
	}
	if mapTools([]core.ToolSpec{}) != nil {
		t.Error("mapTools(empty) should be nil")
	}
}

func TestBuildChatArgs(t *testing.T) {
	temp := float32(0.7)
	maxTok := 100

	req := &core.ChatRequest{
		Model: ModelClaudeSonnet45,
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "Hello"},
		},
		Temperature: &temp,
		MaxTokens:   &maxTok,
	}

	args := buildChatArgs(req, false)

	if args.Model != string(ModelClaudeSonnet45) {
		t.Errorf("Model = %q, want %q", args.Model, ModelClaudeSonnet45)
	}
	if args.Stream {
		t.Error("Stream = true, want false")
	}
	if *args.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", *args.Temperature)
	}
	if *args.MaxTokens != 100 {
		t.Errorf("MaxTokens = %v, want 100", *args.MaxTokens)
	}
	if len(args.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(args.Messages))
	}
}

func TestBuildChatArgsDefaults(t *testing.T) {
	req := &core.ChatRequest{
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
	}

	args := buildChatArgs(req, true)

	if args.Model != string(DefaultModel) {
		t.Errorf("Model = %q, want %q", args.Model, DefaultModel)
	}
	if !args.Stream {
		t.Error("Stream = false, want true")
	}
	if args.Temperature != nil {
		t.Errorf("Temperature = %v, want nil", args.Temperature)
	}
	if args.MaxTokens != nil {
		t.Errorf("MaxTokens = %v, want nil", args.MaxTokens)
	}
	if args.Tools != nil {
		t.Errorf("Tools = %v, want nil", args.Tools)
	}
}

func TestBuildChatArgsStreamFieldAlwaysOnWire(t *testing.T) {
	req := &core.ChatRequest{
		Messages: []core.Message{{Role: core.RoleUser, Content: "Hi"}},
	}

	data, err := json.Marshal(buildChatArgs(req, false))
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if _, ok := decoded["stream"]; !ok {
		t.Error("stream field should always be present in the payload")
	}
}

func TestMapResult(t *testing.T) {
	res := &chatResult{
		Message:      wireRespMessage{Role: "assistant", Content: "Hello!"},
		FinishReason: "stop",
		Usage:        &wireUsage{InputTokens: 12, OutputTokens: 8},
	}

	resp, err := mapResult(res, ModelGPT5Nano)
	if err != nil {
		t.Fatalf("mapResult() error = %v", err)
	}

	if resp.Message.Role != core.RoleAssistant {
		t.Errorf("Role = %q, want assistant", resp.Message.Role)
	}
	if resp.Text() != "Hello!" {
		t.Errorf("Text() = %q, want Hello!", resp.Text())
	}
	if resp.Model != ModelGPT5Nano {
		t.Errorf("Model = %q, want %q", resp.Model, ModelGPT5Nano)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, want stop", resp.FinishReason)
	}
	if resp.Usage.PromptTokens != 12 {
		t.Errorf("PromptTokens = %d, want 12", resp.Usage.PromptTokens)
	}
	if resp.Usage.CompletionTokens != 8 {
		t.Errorf("CompletionTokens = %d, want 8", resp.Usage.CompletionTokens)
	}
	if resp.Usage.TotalTokens != 20 {
		t.Errorf("TotalTokens = %d, want 20", resp.Usage.TotalTokens)
	}
}

func TestMapResultWithoutUsage(t *testing.T) {
	res := &chatResult{
		Message: wireRespMessage{Role: "assistant", Content: "ok"},
	}

	resp, err := mapResult(res, ModelGPT5Nano)
	if err != nil {
		t.Fatalf("mapResult() error = %v", err)
	}
	if resp.Usage.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0", resp.Usage.TotalTokens)
	}
}

func TestMapResultDefaultsAssistantRole(t *testing.T) {
	res := &chatResult{
		Message: wireRespMessage{Content: "no role on the wire"},
	}

	resp, err := mapResult(res, ModelGPT5Nano)
	if err != nil {
		t.Fatalf("mapResult() error = %v", err)
	}
	if resp.Message.Role != core.RoleAssistant {
		t.Errorf("Role = %q, want assistant", resp.Message.Role)
	}
}

func TestMapToolCalls(t *testing.T) {
	t.Run("valid arguments", func(t *testing.T) {
		calls, err := mapToolCalls([]wireToolCall{
			{ID: "call_1", Function: wireFunctionCall{Name: "get_weather", Arguments: `{"city":"Tokyo"}`}},
		})
		if err != nil {
			t.Fatalf("mapToolCalls() error = %v", err)
		}
		if len(calls) != 1 {
			t.Fatalf("len(calls) = %d, want 1", len(calls))
		}
		if calls[0].Name != "get_weather" {
			t.Errorf("Name = %q, want get_weather", calls[0].Name)
		}
	})

	t.Run("empty arguments become an empty object", func(t *testing.T) {
		calls, err := mapToolCalls([]wireToolCall{
			{ID: "call_1", Function: wireFunctionCall{Name: "noop"}},
		})
		if err != nil {
			t.Fatalf("mapToolCalls() error = %v", err)
		}
		if string(calls[0].Arguments) != "{}" {
			t.Errorf("Arguments = %s, want {}", calls[0].Arguments)
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := mapToolCalls([]wireToolCall{
			{ID: "call_1", Function: wireFunctionCall{Name: "f", Arguments: `{broken`}},
		})
		if !errors.Is(err, core.ErrToolArgsInvalid) {
			t.Errorf("err = %v, want ErrToolArgsInvalid", err)
		}
	})
}

func TestMapModelEntries(t *testing.T) {
	entries := []modelEntry{
		{
			ID:                "grok-4",
			Name:              "Grok 4",
			Provider:          "xai",
			ContextWindow:     256000,
			MaxOutputTokens:   64000,
			SupportsStreaming: true,
			SupportsTools:     true,
			SupportsVision:    true,
		},
	}

	result := mapModelEntries(entries)

	if len(result) != 1 {
		t.Fatalf("len(result) = %d, want 1", len(result))
	}
	m := result[0]
	if m.ID != "grok-4" {
		t.Errorf("ID = %q, want grok-4", m.ID)
	}
	if m.Provider != "xai" {
		t.Errorf("Provider = %q, want xai", m.Provider)
	}
	if m.MaxOutputTokens != 64000 {
		t.Errorf("MaxOutputTokens = %d, want 64000", m.MaxOutputTokens)
	}
	if !m.SupportsVision {
		t.Error("SupportsVision = false, want true")
	}
}
