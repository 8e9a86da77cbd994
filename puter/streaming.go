package puter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/fernlabs/puterai/core"
	"github.com/fernlabs/puterai/retry"
)

// doStreamChat establishes a streaming chat call. The configured
// timeout covers both connecting and consuming the stream; when the
// deadline fires the transport is torn down, not merely abandoned.
func (c *Client) doStreamChat(ctx context.Context, req *core.ChatRequest) (core.Stream, error) {
	cfg, token := c.snapshot()
	args := buildChatArgs(req, true)

	streamCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)

	// Only the connection attempt is retried. Once bytes flow, a
	// mid-stream failure ends the stream; the wire protocol has no
	// cursor to resume a partial stream from.
	body, err := retry.Do(streamCtx, retryPolicy(cfg, driverMethodChat), func(ctx context.Context) (io.ReadCloser, error) {
		return c.connectStream(ctx, cfg, token, args)
	})
	if err != nil {
		cancel()
		return nil, err
	}

	return &chatStream{
		body:   body,
		reader: bufio.NewReader(body),
		cancel: cancel,
	}, nil
}

// connectStream performs the POST and returns the response body once
// the server has accepted the request.
func (c *Client) connectStream(ctx context.Context, cfg Config, token core.Secret, args *chatArgs) (io.ReadCloser, error) {
	payload, err := json.Marshal(driverCallRequest{
		Interface: driverInterface,
		Service:   driverService,
		Method:    driverMethodChat,
		Args:      args,
		AuthToken: token.Expose(),
	})
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := cfg.BaseURL + driverCallPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
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

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody, resp.Header.Get(requestIDHeaderKey))
	}

	return resp.Body, nil
}

// chatStream decodes newline-delimited JSON chunks on demand. Each Recv
// reads at most one line from the transport, so the caller's
// consumption rate directly throttles network reads.
type chatStream struct {
	body      io.ReadCloser
	reader    *bufio.Reader
	cancel    context.CancelFunc
	done      bool
	closeOnce sync.Once
}

// Recv returns the next chunk in arrival order.
//
// Blank and malformed lines are skipped without ending the stream. A
// chunk with Done set ends the stream immediately; whatever remains
// buffered is discarded. When the transport closes without a done
// chunk, a trailing partial line is parsed best-effort before EOF.
func (s *chatStream) Recv(ctx context.Context) (core.StreamChunk, error) {
	if s.done {
		return core.StreamChunk{}, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			s.done = true
			s.shutdown()
			return core.StreamChunk{}, err
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			s.done = true
			s.shutdown()

			if err == io.EOF {
				if chunk, ok := parseChunkLine(line); ok {
					return chunk, nil
				}
				return core.StreamChunk{}, io.EOF
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return core.StreamChunk{}, err
			}
			return core.StreamChunk{}, newNetworkError(err)
		}

		chunk, ok := parseChunkLine(line)
		if !ok {
			continue
		}
		if chunk.Done {
			s.done = true
			s.shutdown()
		}
		return chunk, nil
	}
}

// Close tears down the transport and releases the deadline timer. It is
// idempotent and safe to call after the stream has ended.
func (s *chatStream) Close() error {
	s.done = true
	s.shutdown()
	return nil
}

// shutdown cancels the stream deadline and closes the body exactly once.
// Every exit path funnels through here so no timer can leak.
func (s *chatStream) shutdown() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.body.Close()
	})
}

// parseChunkLine decodes one wire line into a chunk. Blank lines and
// lines that do not parse report ok=false.
func parseChunkLine(line string) (core.StreamChunk, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return core.StreamChunk{}, false
	}

	var chunk core.StreamChunk
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		return core.StreamChunk{}, false
	}
	return chunk, true
}

// Compile-time check that chatStream implements Stream.
var _ core.Stream = (*chatStream)(nil)
