package puter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fernlabs/puterai/core"
	"github.com/fernlabs/puterai/retry"
)

// retryPolicy materializes the configured policy and attaches debug
// logging to retry attempts.
func retryPolicy(cfg Config, operation string) retry.Policy {
	pol := cfg.Retry
	if pol.IsZero() {
		pol = retry.DefaultPolicy()
	}
	if !cfg.Debug {
		return pol
	}

	prev := pol.OnRetry
	logger := cfg.Logger
	pol.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Debug("retrying after transient failure",
			"operation", operation,
			"attempt", attempt,
			"delay", delay,
			"error", err)
		if prev != nil {
			prev(attempt, err, delay)
		}
	}
	return pol
}

// call executes one driver call through the retry engine. A fresh
// timeout bounds the whole call, retries included, and is always
// released on exit.
func (c *Client) call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	cfg, token := c.snapshot()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	return retry.Do(ctx, retryPolicy(cfg, method), func(ctx context.Context) (json.RawMessage, error) {
		return c.doCall(ctx, cfg, token, method, args)
	})
}

// doCall performs a single POST to the driver endpoint. The auth token
// is injected into the payload here, at send time, so a token swapped
// mid-call does not affect the request already issued.
func (c *Client) doCall(ctx context.Context, cfg Config, token core.Secret, method string, args any) (json.RawMessage, error) {
	body, err := json.Marshal(driverCallRequest{
		Interface: driverInterface,
		Service:   driverService,
		Method:    method,
		Args:      args,
		AuthToken: token.Expose(),
	})
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := cfg.BaseURL + driverCallPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}

	for key, values := range c.buildHeaders(cfg) {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	requestID := resp.Header.Get(requestIDHeaderKey)

	if resp.StatusCode >= 400 {
		return nil, normalizeError(resp.StatusCode, respBody, requestID)
	}

	var envelope driverCallResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, newDecodeError(err)
	}

	// The driver endpoint can report failure in-band with a 200.
	if envelope.Error != nil {
		return nil, &core.APIError{
			Status:    resp.StatusCode,
			RequestID: requestID,
			Code:      envelope.Error.Code,
			Message:   envelope.Error.Message,
			Err:       core.ErrServer,
		}
	}

	return envelope.Result, nil
}

// doChat performs a non-streaming chat completion request.
func (c *Client) doChat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	args := buildChatArgs(req, false)

	raw, err := c.call(ctx, driverMethodChat, args)
	if err != nil {
		return nil, err
	}

	var res chatResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, newDecodeError(err)
	}

	return mapResult(&res, core.ModelID(args.Model))
}
