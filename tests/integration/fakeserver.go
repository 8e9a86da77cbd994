//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeDriver is an in-process stand-in for the Puter driver API. It
// serves the driver call endpoint and the model catalog endpoint, so
// CLI tests run hermetically without a live token.
type fakeDriver struct {
	token  string
	reply  string
	chunks []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		token:  "integration-test-token",
		reply:  "Hello from the test driver.",
		chunks: []string{"Hello", " from", " the", " stream."},
	}
}

// start serves the fake driver over HTTP until the test ends.
func (f *fakeDriver) start(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/drivers/call", f.handleDriverCall)
	mux.HandleFunc("/puterai/chat/models/details", f.handleModels)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeDriver) handleDriverCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Interface string `json:"interface"`
		Service   string `json:"service"`
		Method    string `json:"method"`
		AuthToken string `json:"auth_token"`
		Args      struct {
			Model    string            `json:"model"`
			Stream   bool              `json:"stream"`
			Messages []json.RawMessage `json:"messages"`
		} `json:"args"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	w.Header().Set("x-request-id", "itest-req-1")

	if req.AuthToken != f.token {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"error":{"code":"token_auth_failed","message":"invalid auth token"}}`)
		return
	}
	if len(req.Args.Messages) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"success":false,"error":{"code":"missing_messages","message":"no messages"}}`)
		return
	}

	if req.Args.Stream {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, chunk := range f.chunks {
			line, _ := json.Marshal(map[string]string{"text": chunk})
			fmt.Fprintf(w, "%s\n", line)
		}
		fmt.Fprintln(w, `{"done":true}`)
		return
	}

	resp := map[string]any{
		"success": true,
		"result": map[string]any{
			"message": map[string]any{
				"role":    "assistant",
				"content": f.reply,
			},
			"finish_reason": "stop",
			"usage": map[string]int{
				"input_tokens":  7,
				"output_tokens": 5,
			},
		},
	}
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeDriver) handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"models": []map[string]any{
			{
				"id": "gpt-5-nano", "name": "GPT-5 Nano", "provider": "openai",
				"context_window": 400000, "max_output_tokens": 128000,
				"supports_streaming": true, "supports_tools": true, "supports_vision": true,
			},
			{
				"id": "claude-sonnet-4-5", "name": "Claude Sonnet 4.5", "provider": "anthropic",
				"context_window": 200000, "max_output_tokens": 64000,
				"supports_streaming": true, "supports_tools": true, "supports_vision": true,
			},
		},
	}
	json.NewEncoder(w).Encode(resp)
}
