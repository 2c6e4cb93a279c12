// Package anthropic implements janus.Generator over the Anthropic SDK.
package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/retry"
)

// ChatModel represents an Anthropic chat model.
type ChatModel string

const (
	ClaudeOpus45   ChatModel = "claude-opus-4-5"
	ClaudeSonnet45 ChatModel = "claude-sonnet-4-5"
	ClaudeHaiku45  ChatModel = "claude-haiku-4-5"

	// DefaultChatModel is the recommended default model.
	DefaultChatModel ChatModel = ClaudeSonnet45
)

// Client wraps the Anthropic SDK to implement janus.Generator.
type Client struct {
	client    *anthropic.Client
	model     ChatModel
	maxTokens int64
	retry     retry.Config
}

// ClientOption configures the Anthropic client.
type ClientOption func(*Client)

// WithModel sets the model for requests.
func WithModel(model ChatModel) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithMaxTokens sets the response token cap.
func WithMaxTokens(n int64) ClientOption {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// WithRetry overrides the backoff applied to transient API failures.
func WithRetry(cfg retry.Config) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// New creates a new Anthropic client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client:    &client,
		model:     DefaultChatModel,
		maxTokens: 4096,
		retry:     retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) params(prompt string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

// Generate produces a complete response for the prompt. Transient API
// failures are retried with backoff.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := retry.Do(ctx, c.retry, func() (*anthropic.Message, error) {
		return c.client.Messages.New(ctx, c.params(prompt))
	})
	if err != nil {
		return "", err
	}

	content := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content, nil
}

// GenerateStream produces the response incrementally.
func (c *Client) GenerateStream(ctx context.Context, prompt string) (<-chan janus.StreamChunk, error) {
	stream := c.client.Messages.NewStreaming(ctx, c.params(prompt))
	ch := make(chan janus.StreamChunk)

	go func() {
		defer close(ch)

		for stream.Next() {
			event := stream.Current()
			if event.Type == "content_block_delta" {
				delta := event.AsContentBlockDelta()
				if textDelta := delta.Delta.AsTextDelta(); textDelta.Type == "text_delta" {
					ch <- janus.StreamChunk{Delta: textDelta.Text}
				}
			}
		}
		if err := stream.Err(); err != nil {
			ch <- janus.StreamChunk{Err: err}
			return
		}
		ch <- janus.StreamChunk{Done: true}
	}()

	return ch, nil
}

var _ janus.Generator = (*Client)(nil)
