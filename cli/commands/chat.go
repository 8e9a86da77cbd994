package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fernlabs/puterai/core"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitProvider   = 2
	ExitNetwork    = 3
)

func (a *App) newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat completion request",
		Long: `Send a chat completion request to the Puter AI service.

Examples:
  puterai chat --prompt "Hello"
  puterai chat --model claude-sonnet-4-5 --prompt "Hello" --stream
  puterai chat --prompt "Hello" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&a.chatPrompt, "prompt", "", "User message (required)")
	cmd.Flags().StringVar(&a.chatSystem, "system", "", "System message")
	cmd.Flags().Float32Var(&a.chatTemperature, "temperature", 0, "Sampling temperature (0 = service default)")
	cmd.Flags().IntVar(&a.chatMaxTokens, "max-tokens", 0, "Max completion tokens (0 = service default)")
	cmd.Flags().BoolVar(&a.chatStream, "stream", false, "Stream the response as it arrives")
	cmd.Flags().DurationVar(&a.chatTimeout, "timeout", 0, "Overall request timeout (0 = client default)")

	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runChat(ctx context.Context) error {
	provider, err := a.createProvider()
	if err != nil {
		return a.failSetup(err)
	}

	// An empty model falls through to the service default.
	client := core.NewClient(provider)
	builder := client.Chat(core.ModelID(a.model))

	if a.chatSystem != "" {
		builder = builder.System(a.chatSystem)
	}
	builder = builder.User(a.chatPrompt)

	if a.chatTemperature > 0 {
		builder = builder.Temperature(a.chatTemperature)
	}
	if a.chatMaxTokens > 0 {
		builder = builder.MaxTokens(a.chatMaxTokens)
	}

	if a.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.chatTimeout)
		defer cancel()
	}

	if a.chatStream {
		return a.runStreamingChat(ctx, builder)
	}
	return a.runNonStreamingChat(ctx, builder)
}

func (a *App) runNonStreamingChat(ctx context.Context, builder *core.ChatBuilder) error {
	resp, err := builder.GetResponse(ctx)
	if err != nil {
		return a.handleChatError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(resp)
	}

	// Text output
	fmt.Fprintf(a.stdout, "> %s\n", a.chatPrompt)
	fmt.Fprintln(a.stdout, resp.Text())

	if a.verbose {
		fmt.Fprintf(a.stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
			resp.Usage.PromptTokens,
			resp.Usage.CompletionTokens,
			resp.Usage.TotalTokens)
	}

	return nil
}

func (a *App) runStreamingChat(ctx context.Context, builder *core.ChatBuilder) error {
	stream, err := builder.Stream(ctx)
	if err != nil {
		return a.handleChatError(err)
	}

	if a.jsonOutput {
		// Accumulate for JSON output. Collect closes the stream.
		resp, err := core.Collect(ctx, stream)
		if err != nil {
			return a.handleChatError(err)
		}
		return a.outputJSON(resp)
	}
	defer stream.Close()

	// Stream text output
	fmt.Fprintf(a.stdout, "> %s\n", a.chatPrompt)

	for {
		chunk, err := stream.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(a.stdout)
			return a.handleChatError(err)
		}

		fmt.Fprint(a.stdout, chunk.Text)
		if a.verbose && chunk.Reasoning != "" {
			fmt.Fprint(a.stderr, chunk.Reasoning)
		}
	}

	// Final newline after the streamed text
	fmt.Fprintln(a.stdout)
	return nil
}

func (a *App) handleChatError(err error) error {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		if a.jsonOutput {
			a.outputErrorJSON(apiErr)
		} else {
			fmt.Fprintf(a.stderr, "Error: %s\n", apiErr.Message)
			if apiErr.RequestID != "" {
				fmt.Fprintf(a.stderr, "  Request ID: %s\n", apiErr.RequestID)
			}
		}

		// Determine exit code based on error type
		if errors.Is(err, core.ErrNetwork) {
			return exitWithCode(ExitNetwork, err)
		}
		return exitWithCode(ExitProvider, err)
	}

	// Network errors
	if errors.Is(err, core.ErrNetwork) {
		if a.jsonOutput {
			a.outputSimpleErrorJSON("network_error", err.Error())
		} else {
			fmt.Fprintf(a.stderr, "Error: network error: %v\n", err)
		}
		return exitWithCode(ExitNetwork, err)
	}

	// Validation errors
	if errors.Is(err, core.ErrNoMessages) {
		if a.jsonOutput {
			a.outputSimpleErrorJSON("validation_error", err.Error())
		} else {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return exitWithCode(ExitValidation, err)
	}

	// Generic error
	if a.jsonOutput {
		a.outputSimpleErrorJSON("error", err.Error())
	} else {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return exitWithCode(ExitProvider, err)
}

func (a *App) outputJSON(resp *core.ChatResponse) error {
	output := map[string]any{
		"model":         resp.Model,
		"output":        resp.Text(),
		"finish_reason": resp.FinishReason,
		"usage": map[string]int{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func (a *App) outputErrorJSON(apiErr *core.APIError) {
	output := map[string]any{
		"error": map[string]any{
			"type":       apiErr.Code,
			"message":    apiErr.Message,
			"status":     apiErr.Status,
			"request_id": apiErr.RequestID,
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

func (a *App) outputSimpleErrorJSON(errType, message string) {
	output := map[string]any{
		"error": map[string]any{
			"type":    errType,
			"message": message,
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// failSetup reports a provider setup failure (missing token, bad
// config) and converts it to a validation exit.
func (a *App) failSetup(err error) error {
	if a.jsonOutput {
		a.outputSimpleErrorJSON("validation_error", err.Error())
	} else {
		fmt.Fprintln(a.stderr, "Error:", err)
	}
	return exitWithCode(ExitValidation, err)
}

// exitError wraps an error with an exit code. Returning an exitError
// means the user-facing output has already been written.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}
