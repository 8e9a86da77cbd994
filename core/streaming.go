package core

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// Stream is a pull-based sequence of chunks from a streaming chat call.
//
// Recv returns chunks strictly in arrival order and reads from the
// transport only when called, so a slow consumer applies backpressure
// instead of accumulating buffered chunks. After the terminal chunk
// (Done true) or the end of the transport, Recv returns io.EOF.
//
// Close releases the underlying connection and timers. Close is
// idempotent. Call it when abandoning a stream early; streams close
// themselves once Recv has returned io.EOF or an error.
type Stream interface {
	Recv(ctx context.Context) (StreamChunk, error)
	Close() error
}

// Collect drains a stream into a single ChatResponse, accumulating text,
// reasoning, and tool call fragments. It closes the stream before
// returning. Blocks until the stream completes, fails, or ctx ends.
func Collect(ctx context.Context, s Stream) (*ChatResponse, error) {
	if s == nil {
		return nil, ErrBadRequest
	}
	defer s.Close()

	var text, reasoning strings.Builder
	var asm toolCallAssembler

	for {
		chunk, err := s.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		text.WriteString(chunk.Text)
		reasoning.WriteString(chunk.Reasoning)
		if chunk.ToolCall != nil {
			asm.add(*chunk.ToolCall)
		}
		if chunk.Done {
			break
		}
	}

	calls, err := asm.finalize()
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Message: Message{
			Role:      RoleAssistant,
			Content:   text.String(),
			ToolCalls: calls,
		},
		Reasoning: reasoning.String(),
	}, nil
}

// toolCallAssembler reassembles streamed tool call fragments into
// complete calls. A fragment with an ID starts a new call; fragments
// without one extend the most recent call's arguments.
type toolCallAssembler struct {
	calls []pendingToolCall
}

type pendingToolCall struct {
	id   string
	name string
	args []string
}

func (a *toolCallAssembler) add(f ToolCallFragment) {
	if f.ID != "" || len(a.calls) == 0 {
		a.calls = append(a.calls, pendingToolCall{id: f.ID})
	}
	last := &a.calls[len(a.calls)-1]
	if f.Name != "" && last.name == "" {
		last.name = f.Name
	}
	if f.Arguments != "" {
		last.args = append(last.args, f.Arguments)
	}
}

func (a *toolCallAssembler) finalize() ([]ToolCall, error) {
	if len(a.calls) == 0 {
		return nil, nil
	}
	out := make([]ToolCall, 0, len(a.calls))
	for _, c := range a.calls {
		args := strings.Join(c.args, "")
		if args == "" {
			args = "{}"
		}
		if !json.Valid([]byte(args)) {
			return nil, ErrToolArgsInvalid
		}
		out = append(out, ToolCall{
			ID:        c.id,
			Name:      c.name,
			Arguments: json.RawMessage(args),
		})
	}
	return out, nil
}
