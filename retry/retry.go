// Package retry provides a generic retry engine with exponential backoff
// and jitter for transient request failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Defaults used by DefaultPolicy.
const (
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 1 * time.Second
	DefaultMaxDelay      = 30 * time.Second
	DefaultBackoffFactor = 2.0
)

// jitterFraction is the spread applied around a computed delay when
// jitter is enabled: the final delay is uniform in [d-25%, d+25%].
const jitterFraction = 0.25

// DefaultRetryableStatuses returns the HTTP status codes treated as
// transient by default.
func DefaultRetryableStatuses() []int {
	return []int{429, 500, 502, 503, 504}
}

// Policy controls retry behavior for an operation.
//
// An operation runs at most MaxRetries+1 times. Between attempts the
// engine sleeps for Delay(attempt), which grows by BackoffFactor per
// attempt and is capped at MaxDelay.
//
// Build custom policies by starting from DefaultPolicy and overriding
// fields. A completely zero Policy passed to Do is replaced with
// DefaultPolicy; a partially populated one is used as given, so an
// explicit Jitter=false is respected.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration

	// BackoffFactor multiplies the delay after each attempt.
	BackoffFactor float64

	// Jitter randomizes each delay within ±25% when true.
	Jitter bool

	// RetryableStatuses lists the HTTP status codes worth retrying.
	RetryableStatuses []int

	// OnRetry, if set, is invoked before each backoff sleep with the
	// 1-based attempt number, the error that caused the retry, and the
	// upcoming delay.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultPolicy returns the standard policy: 3 retries, 1s initial delay
// doubling up to 30s, jitter on, retrying 429 and common 5xx statuses.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:        DefaultMaxRetries,
		InitialDelay:      DefaultInitialDelay,
		MaxDelay:          DefaultMaxDelay,
		BackoffFactor:     DefaultBackoffFactor,
		Jitter:            true,
		RetryableStatuses: DefaultRetryableStatuses(),
	}
}

// IsZero reports whether no field of the policy has been set. A zero
// policy selects DefaultPolicy when passed to Do.
func (p Policy) IsZero() bool {
	return p.MaxRetries == 0 &&
		p.InitialDelay == 0 &&
		p.MaxDelay == 0 &&
		p.BackoffFactor == 0 &&
		!p.Jitter &&
		p.RetryableStatuses == nil &&
		p.OnRetry == nil
}

// sanitized replaces values that would make the backoff math meaningless.
func (p Policy) sanitized() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = DefaultBackoffFactor
	}
	return p
}

// Delay returns the backoff delay before retry number attempt+1.
// The first retry uses attempt 0.
//
// Without jitter the result is deterministic:
// min(InitialDelay*BackoffFactor^attempt, MaxDelay). With jitter the
// capped value is shifted by a uniform random offset within ±25%. The
// result is never negative and is rounded to a whole millisecond.
func (p Policy) Delay(attempt int) time.Duration {
	base := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt))
	capped := math.Min(base, float64(p.MaxDelay))
	if p.Jitter {
		capped += capped * jitterFraction * (2*rand.Float64() - 1)
	}
	if capped < 0 {
		capped = 0
	}
	ms := math.Round(capped / float64(time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

// ExhaustedError is returned when the engine itself stops retrying
// before the operation could succeed, carrying how many attempts were
// made and the final underlying error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the underlying error for error chaining.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs op until it succeeds, it fails with a non-retryable error, or
// MaxRetries+1 attempts have been made. The operation's own error is
// returned unchanged in the failure cases, so callers observe the same
// error they would without retries.
//
// Backoff sleeps respect ctx: a cancellation during the wait returns a
// *ExhaustedError wrapping ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	if p.IsZero() {
		p = DefaultPolicy()
	}
	p = p.sanitized()

	var zero T
	for attempt := 0; ; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		if attempt >= p.MaxRetries {
			return zero, err
		}
		if !IsRetryable(err, p.RetryableStatuses) {
			return zero, err
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, &ExhaustedError{Attempts: attempt + 1, Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

// statusCarrier is implemented by errors that know the HTTP status that
// produced them.
type statusCarrier interface {
	HTTPStatus() int
}

// statusPattern matches a status code embedded in an error message,
// either parenthesized like "(429)" or written as "status 429".
var statusPattern = regexp.MustCompile(`\((\d{3})\)|status[ :=]+(\d{3})`)

// transientMarkers are message fragments that indicate a transient
// network or rate-limit failure regardless of status code.
var transientMarkers = []string{
	"timeout",
	"timed out",
	"connection reset",
	"econnreset",
	"connection refused",
	"econnrefused",
	"socket hang up",
	"network",
	"rate limit",
	"too many requests",
}

// IsRetryable reports whether err is worth retrying given the set of
// retryable HTTP statuses.
//
// Errors carrying a structured status (anything implementing
// HTTPStatus() int) are judged by that status alone. Errors without one
// fall back to transport-level checks and then to message inspection:
// an embedded "(N)" or "status N" code, or a known transient marker
// such as "timeout" or "connection reset", case-insensitively.
//
// Context cancellation and deadline expiry are never retryable.
func IsRetryable(err error, statuses []int) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sc statusCarrier
	if errors.As(err, &sc) {
		if status := sc.HTTPStatus(); status != 0 {
			return slices.Contains(statuses, status)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range statusPattern.FindAllStringSubmatch(msg, -1) {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if status, convErr := strconv.Atoi(digits); convErr == nil && slices.Contains(statuses, status) {
			return true
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
