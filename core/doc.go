// Package core provides the client surface and shared types for the Puter AI SDK.
//
// The core package defines the fundamental abstractions: the [Provider]
// interface implemented by the API client, the [Client] wrapper with its
// fluent builder, the pull-based [Stream], and the error and telemetry
// types shared across the module.
//
// # Client and Provider
//
// The primary entry point is [Client], which wraps a [Provider] and adds
// telemetry and a fluent builder API:
//
//	provider := puter.New(os.Getenv("PUTER_AUTH_TOKEN"))
//	client := core.NewClient(provider,
//	    core.WithTelemetry(myTelemetryHook),
//	)
//
// # ChatBuilder
//
// The [ChatBuilder] provides a fluent API for constructing chat requests:
//
//	resp, err := client.Chat("gpt-5-nano").
//	    System("You are a helpful assistant.").
//	    User("Hello!").
//	    Temperature(0.7).
//	    GetResponse(ctx)
//
// An empty model ID selects the provider's default model. ChatBuilder is
// NOT thread-safe; each goroutine should create its own builder. Use
// [ChatBuilder.Clone] to create independent copies from a base
// configuration:
//
//	base := client.Chat(model).System("You are helpful.").Temperature(0.7)
//	go func() { resp1, _ := base.Clone().User("Q1").GetResponse(ctx) }()
//	go func() { resp2, _ := base.Clone().User("Q2").GetResponse(ctx) }()
//
// # Streaming
//
// Streaming responses are pull-based: the transport is read only when the
// consumer asks for the next chunk, so slow consumers apply backpressure
// instead of piling up buffered output.
//
//	stream, err := client.Chat(model).User("Tell me a story.").Stream(ctx)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	for {
//	    chunk, err := stream.Recv(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(chunk.Text)
//	}
//
// Use [Collect] as a convenience to accumulate a whole stream into a
// final [ChatResponse].
//
// # Provider Interface
//
// The API client implements the [Provider] interface:
//
//	type Provider interface {
//	    ID() string
//	    Models(ctx context.Context) []ModelInfo
//	    Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
//	    StreamChat(ctx context.Context, req *ChatRequest) (Stream, error)
//	    TestConnection(ctx context.Context) bool
//	}
//
// Models never fails: when the live catalog cannot be fetched, a built-in
// fallback catalog is returned. TestConnection is a best-effort probe and
// never returns an error.
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//   - [ErrUnauthorized]: Invalid or missing auth token
//   - [ErrRateLimited]: Service rate limit exceeded
//   - [ErrBadRequest]: Invalid request parameters
//   - [ErrNotFound]: Unknown endpoint or model
//   - [ErrServer]: Service server error (5xx)
//   - [ErrNetwork]: Network connectivity issues
//   - [ErrDecode]: Response parsing failed
//   - [ErrNoMessages]: No messages in request
//
// Structured failures are wrapped in [APIError], which carries the HTTP
// status, service error code, and request ID. Use errors.Is and errors.As:
//
//	var apiErr *core.APIError
//	if errors.As(err, &apiErr) && apiErr.Status == 429 {
//	    // rate limited
//	}
//
// # Telemetry
//
// Implement [TelemetryHook] to observe request lifecycle:
//
//	type MyTelemetry struct{}
//
//	func (t MyTelemetry) OnRequestStart(e RequestStartEvent) {
//	    log.Printf("[%s] starting %s request", e.RequestID, e.Model)
//	}
//
//	func (t MyTelemetry) OnRequestEnd(e RequestEndEvent) {
//	    log.Printf("[%s] done in %v, tokens: %d", e.RequestID, e.Duration(), e.Usage.TotalTokens)
//	}
//
// # Thread Safety
//
// [Client] is safe for concurrent use across goroutines.
// [ChatBuilder] is NOT thread-safe.
// A [Stream] may be read by one goroutine at a time.
package core
