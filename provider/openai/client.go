// Package openai implements janus.Generator over the OpenAI SDK.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/retry"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gpt-4o"

// Client wraps the OpenAI SDK to implement janus.Generator.
type Client struct {
	client *openai.Client
	model  string
	retry  retry.Config
}

// ClientOption configures the OpenAI client.
type ClientOption func(*Client)

// WithModel sets the model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithRetry overrides the backoff applied to transient API failures.
func WithRetry(cfg retry.Config) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client: &client,
		model:  DefaultModel,
		retry:  retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) params(prompt string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
}

// Generate produces a complete response for the prompt. Transient API
// failures are retried with backoff.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := retry.Do(ctx, c.retry, func() (*openai.ChatCompletion, error) {
		return c.client.Chat.Completions.New(ctx, c.params(prompt))
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream produces the response incrementally.
func (c *Client) GenerateStream(ctx context.Context, prompt string) (<-chan janus.StreamChunk, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(prompt))
	ch := make(chan janus.StreamChunk)

	go func() {
		defer close(ch)

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				ch <- janus.StreamChunk{Delta: chunk.Choices[0].Delta.Content}
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
