package puter

import "encoding/json"

// driverCallRequest is the envelope for every POST to /drivers/call.
// The auth token travels in the body, not in a header.
type driverCallRequest struct {
	Interface string `json:"interface"`
	Service   string `json:"service"`
	Method    string `json:"method"`
	Args      any    `json:"args"`
	AuthToken string `json:"auth_token"`
}

// chatArgs is the args payload for the chat-completion driver method.
type chatArgs struct {
	Messages []wireMessage `json:"messages"`
	Model    string        `json:"model,omitempty"`
	Stream   bool          `json:"stream"`

	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`

	Tools []wireTool `json:"tools,omitempty"`
}

// wireMessage is a message in the driver wire format.
type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// wireTool is a tool definition in the driver wire format.
type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

// wireFunction is a function definition for driver tools.
type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// driverCallResponse is the top-level non-streaming response envelope.
type driverCallResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *driverError    `json:"error,omitempty"`
}

// driverError is the structured error payload some failures carry.
type driverError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// chatResult is the result payload of a completed chat call.
type chatResult struct {
	Message      wireRespMessage `json:"message"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        *wireUsage      `json:"usage,omitempty"`
}

// wireRespMessage is the assistant message in a chat result.
type wireRespMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

// wireToolCall is a completed tool call in a chat result.
type wireToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type,omitempty"`
	Function wireFunctionCall `json:"function"`
}

// wireFunctionCall carries the function name and raw argument JSON.
type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// wireUsage is token accounting in a chat result.
type wireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// modelCatalogResponse is the catalog endpoint envelope. The endpoint
// returns either {"models": [...]} or a bare array; Models handles both.
type modelCatalogResponse struct {
	Models []modelEntry `json:"models"`
}

// modelEntry is one model description from the catalog endpoint.
type modelEntry struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Provider          string `json:"provider"`
	ContextWindow     int    `json:"context_window"`
	MaxOutputTokens   int    `json:"max_output_tokens"`
	SupportsStreaming bool   `json:"supports_streaming"`
	SupportsTools     bool   `json:"supports_tools"`
	SupportsVision    bool   `json:"supports_vision"`
}
