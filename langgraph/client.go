package langgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spetersoncode/janus/internal/sse"
)

// Client is a LangGraph Platform-compatible client. It performs the
// inverse translation of the REST adapter.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var eb ErrorBody
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, eb.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// Info fetches the server info document.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.do(ctx, http.MethodGet, "/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Ok checks server liveness.
func (c *Client) Ok(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ok", nil, nil)
}

// SearchAssistants returns the registered assistants. Servers built from
// this module always return a singleton.
func (c *Client) SearchAssistants(ctx context.Context) ([]Assistant, error) {
	var out []Assistant
	if err := c.do(ctx, http.MethodPost, "/assistants/search", SearchRequest{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAssistant fetches one assistant by id.
func (c *Client) GetAssistant(ctx context.Context, id string) (*Assistant, error) {
	var a Assistant
	if err := c.do(ctx, http.MethodGet, "/assistants/"+id, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateThread creates a conversation thread.
func (c *Client) CreateThread(ctx context.Context, req CreateThreadRequest) (*Thread, error) {
	var t Thread
	if err := c.do(ctx, http.MethodPost, "/threads", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SearchThreads lists threads.
func (c *Client) SearchThreads(ctx context.Context, req SearchRequest) ([]Thread, error) {
	var out []Thread
	if err := c.do(ctx, http.MethodPost, "/threads/search", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetThread fetches one thread by id.
func (c *Client) GetThread(ctx context.Context, id string) (*Thread, error) {
	var t Thread
	if err := c.do(ctx, http.MethodGet, "/threads/"+id, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetThreadState fetches a point-in-time state snapshot of the thread.
func (c *Client) GetThreadState(ctx context.Context, id string) (*ThreadState, error) {
	var st ThreadState
	if err := c.do(ctx, http.MethodGet, "/threads/"+id+"/state", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// DeleteThread removes the thread and its run records.
func (c *Client) DeleteThread(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/threads/"+id, nil, nil)
}

// CreateRun starts a background run on the thread.
func (c *Client) CreateRun(ctx context.Context, threadID string, req RunRequest) (*Run, error) {
	var rn Run
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", req, &rn); err != nil {
		return nil, err
	}
	return &rn, nil
}

// RunWait runs the handler on the thread and blocks for the resulting
// thread state.
func (c *Client) RunWait(ctx context.Context, threadID string, req RunRequest) (*ThreadState, error) {
	var st ThreadState
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs/wait", req, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// RunWaitStateless runs the handler on a fresh ephemeral thread.
func (c *Client) RunWaitStateless(ctx context.Context, req RunRequest) (*ThreadState, error) {
	var st ThreadState
	if err := c.do(ctx, http.MethodPost, "/runs/wait", req, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListRuns lists the thread's runs in creation order.
func (c *Client) ListRuns(ctx context.Context, threadID string) ([]Run, error) {
	var out []Run
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun fetches one run of the thread.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var rn Run
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &rn); err != nil {
		return nil, err
	}
	return &rn, nil
}

// StreamEvent is one named SSE frame from a run stream.
type StreamEvent struct {
	Event string
	Data  json.RawMessage
	Err   error
}

// RunStream starts a run and streams its named SSE frames. The channel
// closes after the end (or error) frame, or when ctx is cancelled. An
// empty threadID uses the stateless endpoint.
func (c *Client) RunStream(ctx context.Context, threadID string, req RunRequest) (<-chan StreamEvent, error) {
	path := "/runs/stream"
	if threadID != "" {
		path = "/threads/" + threadID + "/runs/stream"
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var eb ErrorBody
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Error != "" {
			return nil, fmt.Errorf("POST %s: %s", path, eb.Error)
		}
		return nil, fmt.Errorf("POST %s: %s", path, resp.Status)
	}

	out := make(chan StreamEvent, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		reader := sse.NewReader(resp.Body)
		for {
			frame, err := reader.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				out <- StreamEvent{Err: err}
				return
			}
			select {
			case out <- StreamEvent{Event: frame.Event, Data: frame.Data}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
