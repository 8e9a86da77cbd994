package puter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fernlabs/puterai/core"
)

// DefaultAuthTokenEnvVar is the environment variable name for the Puter auth token.
const DefaultAuthTokenEnvVar = "PUTER_AUTH_TOKEN"

// ErrAuthTokenNotFound is returned when the auth token environment variable is not set.
var ErrAuthTokenNotFound = errors.New("puter: PUTER_AUTH_TOKEN environment variable not set")

// Driver call envelope constants. Every chat request goes through the
// generic driver endpoint with this interface/service pair.
const (
	driverCallPath     = "/drivers/call"
	driverInterface    = "puter-chat-completion"
	driverService      = "ai-chat"
	driverMethodChat   = "complete"
	modelCatalogPath   = "/puterai/chat/models/details"
	requestIDHeaderKey = "x-request-id"
)

// TestConnection probe parameters.
const (
	probePrompt    = "ping"
	probeMaxTokens = 8
	probeTimeout   = 15 * time.Second
)

// NewFromEnv creates a new Puter provider using the PUTER_AUTH_TOKEN environment variable.
// This is a convenience factory for quick setup:
//
//	provider, err := puter.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := core.NewClient(provider)
func NewFromEnv(opts ...Option) (*Client, error) {
	token := os.Getenv(DefaultAuthTokenEnvVar)
	if token == "" {
		return nil, ErrAuthTokenNotFound
	}
	return New(token, opts...), nil
}

// Client is the Puter AI driver provider.
// Client is safe for concurrent use; the auth token and configuration
// may be swapped between calls without reconstructing it.
type Client struct {
	mu     sync.RWMutex
	token  core.Secret
	config Config
}

// New creates a new Puter provider with the given auth token and options.
func New(token string, opts ...Option) *Client {
	cfg := Config{
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		Timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		token:  core.NewSecret(token),
		config: cfg,
	}
}

// ID returns the provider identifier.
func (c *Client) ID() string {
	return "puter"
}

// UpdateToken replaces the auth token. In-flight calls keep the token
// they read when the request was issued; the new token applies from
// the next call.
func (c *Client) UpdateToken(token string) {
	c.mu.Lock()
	c.token = core.NewSecret(token)
	c.mu.Unlock()
}

// Configure applies options to the live configuration. The next call
// observes the updated values.
func (c *Client) Configure(opts ...Option) {
	c.mu.Lock()
	for _, opt := range opts {
		opt(&c.config)
	}
	c.mu.Unlock()
}

// snapshot returns the configuration and token as of now. Each public
// call takes one snapshot up front and uses it for its whole lifetime,
// including retries.
func (c *Client) snapshot() (Config, core.Secret) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cfg := c.config
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return cfg, c.token
}

// Chat sends a non-streaming chat request.
func (c *Client) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return c.doChat(ctx, req)
}

// StreamChat sends a streaming chat request.
func (c *Client) StreamChat(ctx context.Context, req *core.ChatRequest) (core.Stream, error) {
	return c.doStreamChat(ctx, req)
}

// Models returns the available model catalog. It never fails: when the
// live catalog cannot be fetched the embedded fallback catalog is
// returned instead.
func (c *Client) Models(ctx context.Context) []core.ModelInfo {
	return c.fetchModels(ctx)
}

// TestConnection reports whether the service answers a minimal probe
// request with assistant content. It never returns an error; any
// failure, including exhausted retries, reports false.
func (c *Client) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	maxTokens := probeMaxTokens
	resp, err := c.Chat(ctx, &core.ChatRequest{
		Messages:  []core.Message{{Role: core.RoleUser, Content: probePrompt}},
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return false
	}
	return resp.Text() != ""
}

// buildHeaders constructs the HTTP headers for an API request.
func (c *Client) buildHeaders(cfg Config) http.Header {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")

	// Copy any extra headers
	for key, values := range cfg.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	// An explicit User-Agent in Headers wins.
	if headers.Get("User-Agent") == "" {
		headers.Set("User-Agent", cfg.UserAgent)
	}

	return headers
}

// Compile-time check that Client implements Provider.
var _ core.Provider = (*Client)(nil)
