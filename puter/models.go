// Package puter provides the Puter AI driver API provider implementation.
package puter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fernlabs/puterai/core"
	"github.com/fernlabs/puterai/retry"
)

// Model constants for the embedded catalog.
const (
	// OpenAI
	ModelGPT5Nano core.ModelID = "gpt-5-nano"
	ModelGPT5Mini core.ModelID = "gpt-5-mini"
	ModelGPT5     core.ModelID = "gpt-5"

	// Anthropic
	ModelClaudeOpus45   core.ModelID = "claude-opus-4-5"
	ModelClaudeSonnet45 core.ModelID = "claude-sonnet-4-5"
	ModelClaudeHaiku45  core.ModelID = "claude-haiku-4-5"

	// Google
	ModelGemini25Pro   core.ModelID = "gemini-2.5-pro"
	ModelGemini25Flash core.ModelID = "gemini-2.5-flash"

	// DeepSeek
	ModelDeepSeekChat     core.ModelID = "deepseek-chat"
	ModelDeepSeekReasoner core.ModelID = "deepseek-reasoner"

	// xAI
	ModelGrok4 core.ModelID = "grok-4"

	// Mistral
	ModelMistralLarge core.ModelID = "mistral-large-latest"
)

// DefaultModel is used when a chat request does not name a model.
const DefaultModel = ModelGPT5Nano

// fallbackCatalog is the embedded model list, used whenever the live
// catalog endpoint cannot be reached.
var fallbackCatalog = []core.ModelInfo{
	{
		ID: ModelGPT5Nano, Name: "GPT-5 Nano", Provider: "openai",
		ContextWindow: 400000, MaxOutputTokens: 128000,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelGPT5Mini, Name: "GPT-5 Mini", Provider: "openai",
		ContextWindow: 400000, MaxOutputTokens: 128000,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelGPT5, Name: "GPT-5", Provider: "openai",
		ContextWindow: 400000, MaxOutputTokens: 128000,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelClaudeOpus45, Name: "Claude Opus 4.5", Provider: "anthropic",
		ContextWindow: 200000, MaxOutputTokens: 64000,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelClaudeSonnet45, Name: "Claude Sonnet 4.5", Provider: "anthropic",
		ContextWindow: 200000, MaxOutputTokens: 64000,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelClaudeHaiku45, Name: "Claude Haiku 4.5", Provider: "anthropic",
		ContextWindow: 200000, MaxOutputTokens: 64000,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelGemini25Pro, Name: "Gemini 2.5 Pro", Provider: "google",
		ContextWindow: 1048576, MaxOutputTokens: 65536,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelGemini25Flash, Name: "Gemini 2.5 Flash", Provider: "google",
		ContextWindow: 1048576, MaxOutputTokens: 65536,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelDeepSeekChat, Name: "DeepSeek Chat", Provider: "deepseek",
		ContextWindow: 128000, MaxOutputTokens: 8192,
		SupportsStreaming: true, SupportsTools: true,
	},
	{
		ID: ModelDeepSeekReasoner, Name: "DeepSeek Reasoner", Provider: "deepseek",
		ContextWindow: 128000, MaxOutputTokens: 65536,
		SupportsStreaming: true,
	},
	{
		ID: ModelGrok4, Name: "Grok 4", Provider: "xai",
		ContextWindow: 256000, MaxOutputTokens: 64000,
		SupportsStreaming: true, SupportsTools: true, SupportsVision: true,
	},
	{
		ID: ModelMistralLarge, Name: "Mistral Large", Provider: "mistral",
		ContextWindow: 128000, MaxOutputTokens: 32000,
		SupportsStreaming: true, SupportsTools: true,
	},
}

// modelRegistry is a map for quick model lookup by ID.
var modelRegistry = buildModelRegistry()

// buildModelRegistry creates a map from model ID to ModelInfo.
func buildModelRegistry() map[core.ModelID]*core.ModelInfo {
	registry := make(map[core.ModelID]*core.ModelInfo, len(fallbackCatalog))
	for i := range fallbackCatalog {
		registry[fallbackCatalog[i].ID] = &fallbackCatalog[i]
	}
	return registry
}

// GetModelInfo returns the embedded-catalog ModelInfo for a given model
// ID, or nil if not found.
func GetModelInfo(id core.ModelID) *core.ModelInfo {
	return modelRegistry[id]
}

// FallbackModels returns a copy of the embedded catalog.
func FallbackModels() []core.ModelInfo {
	result := make([]core.ModelInfo, len(fallbackCatalog))
	copy(result, fallbackCatalog)
	return result
}

// fetchModels fetches the live catalog through the retry engine. Any
// failure surviving retries degrades to the embedded catalog; this
// operation never fails.
func (c *Client) fetchModels(ctx context.Context) []core.ModelInfo {
	cfg, token := c.snapshot()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	list, err := retry.Do(ctx, retryPolicy(cfg, "models"), func(ctx context.Context) ([]core.ModelInfo, error) {
		return c.doFetchModels(ctx, cfg, token)
	})
	if err != nil {
		if cfg.Debug {
			cfg.Logger.Debug("model catalog fetch failed, using embedded catalog",
				"error", err)
		}
		return FallbackModels()
	}
	return list
}

// doFetchModels performs a single GET against the catalog endpoint.
func (c *Client) doFetchModels(ctx context.Context, cfg Config, token core.Secret) ([]core.ModelInfo, error) {
	url := cfg.BaseURL + modelCatalogPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newNetworkError(err)
	}

	for key, values := range c.buildHeaders(cfg) {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+token.Expose())

	resp, err := cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return nil, normalizeError(resp.StatusCode, respBody, resp.Header.Get(requestIDHeaderKey))
	}

	// The endpoint answers {"models": [...]} or a bare array. Anything
	// else is treated as an empty catalog, not an error.
	var envelope modelCatalogResponse
	if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Models != nil {
		return mapModelEntries(envelope.Models), nil
	}
	var entries []modelEntry
	if err := json.Unmarshal(respBody, &entries); err == nil && entries != nil {
		return mapModelEntries(entries), nil
	}
	return []core.ModelInfo{}, nil
}
