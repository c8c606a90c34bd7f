// Package llm provides the chat-completion capability behind the chat
// endpoint.
package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "claude-sonnet-4-5"

const defaultMaxTokens int64 = 2048

// Streamer streams a chat completion, emitting text deltas as they arrive.
type Streamer interface {
	Stream(ctx context.Context, system, prompt string, emit func(delta string) error) error
}

// AnthropicClient streams completions from the Anthropic Messages API.
type AnthropicClient struct {
	sdk       anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicClient creates a client for the given API key and model.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = DefaultModel
	}
	return &AnthropicClient{
		sdk:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: defaultMaxTokens,
	}
}

// Stream sends prompt as a single user message and calls emit for every
// text delta. It returns the first emit error or the stream error.
func (c *AnthropicClient) Stream(ctx context.Context, system, prompt string, emit func(delta string) error) error {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	stream := c.sdk.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text == "" {
					continue
				}
				if err := emit(delta.Text); err != nil {
					return err
				}
			}
		}
	}
	return stream.Err()
}
