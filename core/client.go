package core

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Provider is the interface the API client implements.
// Providers SHOULD be safe for concurrent calls.
// If a provider cannot be concurrent-safe, it MUST document this.
type Provider interface {
	// ID returns the provider identifier (e.g., "puter").
	ID() string

	// Models returns the models available from the service.
	// Implementations must not fail: when the live catalog is
	// unreachable they serve a built-in fallback instead.
	Models(ctx context.Context) []ModelInfo

	// Chat sends a non-streaming chat request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// StreamChat sends a streaming chat request.
	StreamChat(ctx context.Context, req *ChatRequest) (Stream, error)

	// TestConnection reports whether the service is reachable with the
	// current credentials. It never returns an error.
	TestConnection(ctx context.Context) bool
}

// Client is the main entry point for issuing chat requests.
// It wraps a Provider with telemetry and a fluent builder API.
// Retries happen inside the provider; Client adds none of its own.
// Client is safe for concurrent use.
type Client struct {
	provider  Provider
	telemetry TelemetryHook
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given provider and options.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:  p,
		telemetry: NoopTelemetryHook{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Chat returns a ChatBuilder for constructing and executing a chat request.
// An empty model selects the provider's default model.
func (c *Client) Chat(model ModelID) *ChatBuilder {
	return &ChatBuilder{
		client: c,
		req: ChatRequest{
			Model: model,
		},
	}
}

// ChatBuilder provides a fluent API for building chat requests.
// ChatBuilder is NOT thread-safe and should not be shared across goroutines.
type ChatBuilder struct {
	client *Client
	req    ChatRequest
}

// System appends a system message.
func (b *ChatBuilder) System(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleSystem, Content: s})
	return b
}

// User appends a user message.
func (b *ChatBuilder) User(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: s})
	return b
}

// Assistant appends an assistant message.
func (b *ChatBuilder) Assistant(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleAssistant, Content: s})
	return b
}

// Messages appends pre-built messages. Use it to replay conversation
// history, or to echo an assistant tool call message ahead of its
// ToolResult answers.
func (b *ChatBuilder) Messages(msgs ...Message) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, msgs...)
	return b
}

// ToolResult appends a tool result message answering the tool call with
// the given ID.
func (b *ChatBuilder) ToolResult(callID, content string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: callID,
	})
	return b
}

// Temperature sets the temperature parameter.
func (b *ChatBuilder) Temperature(v float32) *ChatBuilder {
	b.req.Temperature = &v
	return b
}

// MaxTokens sets the maximum tokens parameter.
func (b *ChatBuilder) MaxTokens(n int) *ChatBuilder {
	b.req.MaxTokens = &n
	return b
}

// Tools sets the tools available for the request.
func (b *ChatBuilder) Tools(ts ...ToolSpec) *ChatBuilder {
	b.req.Tools = ts
	return b
}

// Clone returns an independent copy of the builder. Use it to fan a base
// configuration out across goroutines, each with its own builder.
func (b *ChatBuilder) Clone() *ChatBuilder {
	nb := &ChatBuilder{client: b.client, req: b.req}
	nb.req.Messages = append([]Message(nil), b.req.Messages...)
	nb.req.Tools = append([]ToolSpec(nil), b.req.Tools...)
	if b.req.Temperature != nil {
		v := *b.req.Temperature
		nb.req.Temperature = &v
	}
	if b.req.MaxTokens != nil {
		n := *b.req.MaxTokens
		nb.req.MaxTokens = &n
	}
	return nb
}

// validate checks that the request is valid.
func (b *ChatBuilder) validate() error {
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}
	for _, msg := range b.req.Messages {
		if msg.Content == "" && len(msg.ToolCalls) == 0 {
			return ErrNoMessages
		}
	}
	return nil
}

// GetResponse executes the chat request and returns the response.
// It applies validation and telemetry, then delegates to the provider.
func (b *ChatBuilder) GetResponse(ctx context.Context) (*ChatResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	providerID := b.client.provider.ID()
	requestID := uuid.NewString()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Provider:  providerID,
		Model:     b.req.Model,
		RequestID: requestID,
		Start:     start,
	})

	resp, err := b.client.provider.Chat(ctx, &b.req)

	usage := TokenUsage{}
	if resp != nil {
		usage = resp.Usage
	}
	b.client.telemetry.OnRequestEnd(RequestEndEvent{
		Provider:  providerID,
		Model:     b.req.Model,
		RequestID: requestID,
		Start:     start,
		End:       time.Now(),
		Usage:     usage,
		Err:       err,
	})

	return resp, err
}

// Stream executes the chat request and returns a streaming response.
// It applies validation and telemetry.
func (b *ChatBuilder) Stream(ctx context.Context) (Stream, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	providerID := b.client.provider.ID()
	requestID := uuid.NewString()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Provider:  providerID,
		Model:     b.req.Model,
		RequestID: requestID,
		Start:     start,
	})

	stream, err := b.client.provider.StreamChat(ctx, &b.req)
	if err != nil {
		b.client.telemetry.OnRequestEnd(RequestEndEvent{
			Provider:  providerID,
			Model:     b.req.Model,
			RequestID: requestID,
			Start:     start,
			End:       time.Now(),
			Err:       err,
		})
		return nil, err
	}

	return &telemetryStream{
		inner:     stream,
		hook:      b.client.telemetry,
		provider:  providerID,
		model:     b.req.Model,
		requestID: requestID,
		start:     start,
	}, nil
}

// telemetryStream wraps a Stream to emit the end event exactly once,
// when the stream terminates or is closed.
type telemetryStream struct {
	inner     Stream
	hook      TelemetryHook
	provider  string
	model     ModelID
	requestID string
	start     time.Time
	once      sync.Once
}

// Recv returns the next chunk from the wrapped stream.
func (s *telemetryStream) Recv(ctx context.Context) (StreamChunk, error) {
	chunk, err := s.inner.Recv(ctx)
	if err != nil {
		if err == io.EOF {
			s.finish(nil)
		} else {
			s.finish(err)
		}
	}
	return chunk, err
}

// Close closes the wrapped stream.
func (s *telemetryStream) Close() error {
	err := s.inner.Close()
	s.finish(nil)
	return err
}

func (s *telemetryStream) finish(err error) {
	s.once.Do(func() {
		s.hook.OnRequestEnd(RequestEndEvent{
			Provider:  s.provider,
			Model:     s.model,
			RequestID: s.requestID,
			Start:     s.start,
			End:       time.Now(),
			Err:       err,
		})
	})
}

// Compile-time check that telemetryStream implements Stream.
var _ Stream = (*telemetryStream)(nil)
