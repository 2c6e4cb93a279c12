// Package google implements janus.Generator over the Google GenAI SDK.
package google

import (
	"context"

	"google.golang.org/genai"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/retry"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Client wraps the Google GenAI SDK to implement janus.Generator.
type Client struct {
	client *genai.Client
	model  string
	retry  retry.Config
}

// ClientOption configures the Google client.
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

// New creates a new Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		client: client,
		model:  DefaultModel,
		retry:  retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate produces a complete response for the prompt. Transient API
// failures are retried with backoff.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	contents := genai.Text(prompt)
	resp, err := retry.Do(ctx, c.retry, func() (*genai.GenerateContentResponse, error) {
		return c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	})
	if err != nil {
		return "", err
	}

	content := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			content += part.Text
		}
	}
	return content, nil
}

// GenerateStream produces the response incrementally.
func (c *Client) GenerateStream(ctx context.Context, prompt string) (<-chan janus.StreamChunk, error) {
	contents := genai.Text(prompt)
	ch := make(chan janus.StreamChunk)

	go func() {
		defer close(ch)

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, nil) {
			if err != nil {
				ch <- janus.StreamChunk{Err: err}
				return
			}
			if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
				for _, part := range resp.Candidates[0].Content.Parts {
					if part.Text != "" {
						ch <- janus.StreamChunk{Delta: part.Text}
					}
				}
			}
		}
		ch <- janus.StreamChunk{Done: true}
	}()

	return ch, nil
}

var _ janus.Generator = (*Client)(nil)
