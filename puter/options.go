package puter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fernlabs/puterai/retry"
)

// DefaultBaseURL is the default base URL for the Puter API.
const DefaultBaseURL = "https://api.puter.com"

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 120 * time.Second

// DefaultUserAgent identifies this SDK in outgoing requests.
const DefaultUserAgent = "puterai-go/1"

// Config holds the configuration for the Puter provider.
// Fields are read at call time, so changes applied through Configure
// are observed by the next call rather than requiring a new client.
type Config struct {
	// BaseURL is the base URL for the API. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is the HTTP client to use for requests.
	HTTPClient *http.Client

	// Headers are additional headers to include in requests.
	Headers http.Header

	// UserAgent is sent when no User-Agent header was set through
	// Headers. Defaults to DefaultUserAgent.
	UserAgent string

	// Timeout bounds each call, including the full lifetime of a
	// streaming response. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Retry governs how transient failures are retried.
	// The zero value selects retry.DefaultPolicy.
	Retry retry.Policy

	// Debug enables diagnostic logging of retries and catalog
	// fallback through Logger.
	Debug bool

	// Logger receives debug diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// Option is a functional option for configuring the Puter provider.
type Option func(*Config)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeaders sets additional headers to include in requests.
func WithHeaders(headers http.Header) Option {
	return func(c *Config) {
		c.Headers = headers
	}
}

// WithHeader adds a single header to include in requests.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Set(key, value)
	}
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithRetryPolicy sets the retry policy for transient failures.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Config) {
		c.Retry = p
	}
}

// WithMaxRetries overrides only the retry count of the current policy.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		if c.Retry.IsZero() {
			c.Retry = retry.DefaultPolicy()
		}
		c.Retry.MaxRetries = n
	}
}

// WithRetryDelay overrides only the initial backoff delay of the
// current policy.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) {
		if c.Retry.IsZero() {
			c.Retry = retry.DefaultPolicy()
		}
		c.Retry.InitialDelay = d
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(c *Config) {
		c.Debug = debug
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
