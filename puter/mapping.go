package puter

import (
	"encoding/json"

	"github.com/fernlabs/puterai/core"
)

// mapMessages converts client messages to the driver wire format.
func mapMessages(msgs []core.Message) []wireMessage {
	result := make([]wireMessage, len(msgs))
	for i, msg := range msgs {
		result[i] = wireMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		if len(msg.ToolCalls) > 0 {
			result[i].ToolCalls = mapToolCallsToWire(msg.ToolCalls)
		}
	}
	return result
}

// mapToolCallsToWire converts completed tool calls for echo-back in
// conversation history.
func mapToolCallsToWire(calls []core.ToolCall) []wireToolCall {
	result := make([]wireToolCall, len(calls))
	for i, call := range calls {
		result[i] = wireToolCall{
			ID:   call.ID,
			Type: "function",
			Function: wireFunctionCall{
				Name:      call.Name,
				Arguments: string(call.Arguments),
			},
		}
	}
	return result
}

// mapTools converts tool specs to the driver wire format.
func mapTools(specs []core.ToolSpec) []wireTool {
	if len(specs) == 0 {
		return nil
	}

	result := make([]wireTool, len(specs))
	for i, spec := range specs {
		params := spec.Function.Parameters
		if params == nil {
			params = json.RawMessage(`{}`)
		}
		result[i] = wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        spec.Function.Name,
				Description: spec.Function.Description,
				Parameters:  params,
			},
		}
	}
	return result
}

// buildChatArgs creates the driver args payload from a ChatRequest.
// An unset model falls back to the provider default.
func buildChatArgs(req *core.ChatRequest, stream bool) *chatArgs {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	args := &chatArgs{
		Messages: mapMessages(req.Messages),
		Model:    string(model),
		Stream:   stream,
	}

	if req.Temperature != nil {
		args.Temperature = req.Temperature
	}
	if req.MaxTokens != nil {
		args.MaxTokens = req.MaxTokens
	}
	if len(req.Tools) > 0 {
		args.Tools = mapTools(req.Tools)
	}

	return args
}

// mapResult converts a chat result payload to a ChatResponse.
func mapResult(res *chatResult, model core.ModelID) (*core.ChatResponse, error) {
	result := &core.ChatResponse{
		Message: core.Message{
			Role:    core.RoleAssistant,
			Content: res.Message.Content,
		},
		Model:        model,
		FinishReason: res.FinishReason,
	}
	if res.Message.Role != "" {
		result.Message.Role = core.Role(res.Message.Role)
	}

	if res.Usage != nil {
		result.Usage = core.TokenUsage{
			PromptTokens:     res.Usage.InputTokens,
			CompletionTokens: res.Usage.OutputTokens,
			TotalTokens:      res.Usage.InputTokens + res.Usage.OutputTokens,
		}
	}

	if len(res.Message.ToolCalls) > 0 {
		toolCalls, err := mapToolCalls(res.Message.ToolCalls)
		if err != nil {
			return nil, err
		}
		result.Message.ToolCalls = toolCalls
	}

	return result, nil
}

// mapToolCalls converts wire tool calls to core ToolCalls.
func mapToolCalls(calls []wireToolCall) ([]core.ToolCall, error) {
	result := make([]core.ToolCall, len(calls))

	for i, call := range calls {
		args := call.Function.Arguments
		if args == "" {
			args = "{}"
		}
		if !json.Valid([]byte(args)) {
			return nil, core.ErrToolArgsInvalid
		}

		result[i] = core.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(args),
		}
	}

	return result, nil
}

// mapModelEntries converts catalog entries to ModelInfo values.
func mapModelEntries(entries []modelEntry) []core.ModelInfo {
	result := make([]core.ModelInfo, len(entries))
	for i, e := range entries {
		result[i] = core.ModelInfo{
			ID:                core.ModelID(e.ID),
			Name:              e.Name,
			Provider:          e.Provider,
			ContextWindow:     e.ContextWindow,
			MaxOutputTokens:   e.MaxOutputTokens,
			SupportsStreaming: e.SupportsStreaming,
			SupportsTools:     e.SupportsTools,
			SupportsVision:    e.SupportsVision,
		}
	}
	return result
}
