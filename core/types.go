// Package core provides the shared types and client surface of the Puter AI SDK.
package core

import "encoding/json"

// ModelID is a string identifier for a model.
// Using string avoids coupling to catalog-specific enums.
type ModelID string

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool" // For tool result messages
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Optional fields passed through to the service when set.
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For assistant messages requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool result messages (RoleTool)
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolCall represents a complete tool invocation requested by the model.
// Arguments MUST be valid JSON bytes and MUST preserve raw JSON (no reformatting).
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCallFragment is a partial tool call surfaced by a streaming
// response. Arguments holds an argument text fragment, not necessarily
// valid JSON on its own; fragments for one call concatenate in order.
type ToolCallFragment struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolSpec declares a tool the model may call.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes the function behind a tool.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ChatRequest represents a request to a chat model.
// Model may be left empty, in which case the provider's default model is used.
type ChatRequest struct {
	Model       ModelID    `json:"model,omitempty"`
	Messages    []Message  `json:"messages"`
	Temperature *float32   `json:"temperature,omitempty"`
	MaxTokens   *int       `json:"max_tokens,omitempty"`
	Tools       []ToolSpec `json:"tools,omitempty"`
}

// ChatResponse represents a complete response from a chat model.
type ChatResponse struct {
	Message      Message    `json:"message"`
	Model        ModelID    `json:"model,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        TokenUsage `json:"usage"`
	Reasoning    string     `json:"reasoning,omitempty"`
}

// Text returns the assistant message content.
func (r *ChatResponse) Text() string {
	return r.Message.Content
}

// HasToolCalls reports whether the response contains any tool calls.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.Message.ToolCalls) > 0
}

// FirstToolCall returns the first tool call, or nil if there are none.
// This is convenient for single-tool scenarios:
//
//	if tc := resp.FirstToolCall(); tc != nil {
//	    // handle tool call
//	}
func (r *ChatResponse) FirstToolCall() *ToolCall {
	if len(r.Message.ToolCalls) > 0 {
		return &r.Message.ToolCalls[0]
	}
	return nil
}

// StreamChunk represents an incremental piece of a streaming response.
// At most one of Text, Reasoning, or ToolCall is populated per chunk.
// A chunk with Done true terminates the stream.
type StreamChunk struct {
	Text      string            `json:"text,omitempty"`
	Reasoning string            `json:"reasoning,omitempty"`
	ToolCall  *ToolCallFragment `json:"tool_call,omitempty"`
	Done      bool              `json:"done,omitempty"`
}

// ModelInfo describes a model available from the service.
type ModelInfo struct {
	ID                ModelID `json:"id"`
	Name              string  `json:"name"`
	Provider          string  `json:"provider"`
	ContextWindow     int     `json:"context_window"`
	MaxOutputTokens   int     `json:"max_output_tokens"`
	SupportsStreaming bool    `json:"supports_streaming"`
	SupportsTools     bool    `json:"supports_tools"`
	SupportsVision    bool    `json:"supports_vision"`
}
