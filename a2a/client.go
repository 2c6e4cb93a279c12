package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/internal/sse"
)

// Client is an A2A protocol client for calling remote agents. It performs
// the inverse translation of the server adapter.
type Client struct {
	endpoint   string
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

// NewClient creates a new A2A client for the given endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StreamResult is one item from a streaming call: either a decoded event
// or a terminal error.
type StreamResult struct {
	Event Event
	Err   error
}

func (c *Client) post(ctx context.Context, method string, params any) (*http.Response, error) {
	rpcReq := Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`"1"`),
		Method:  method,
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	rpcReq.Params = raw

	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// call performs a non-streaming JSON-RPC call and unmarshals the result.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	resp, err := c.post(ctx, method, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var rpcResp struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *Error          `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to parse result: %w", err)
		}
	}
	return nil
}

// stream performs a streaming JSON-RPC call, decoding each SSE frame into
// an event. The channel closes when the stream ends or ctx is cancelled.
func (c *Client) stream(ctx context.Context, method string, params any) (<-chan StreamResult, error) {
	resp, err := c.post(ctx, method, params)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamResult, 16)
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
				out <- StreamResult{Err: err}
				return
			}

			var rpcResp struct {
				Result json.RawMessage `json:"result,omitempty"`
				Error  *Error          `json:"error,omitempty"`
			}
			if err := json.Unmarshal(frame.Data, &rpcResp); err != nil {
				out <- StreamResult{Err: fmt.Errorf("failed to parse frame: %w", err)}
				return
			}
			if rpcResp.Error != nil {
				out <- StreamResult{Err: rpcResp.Error}
				return
			}

			event, err := UnmarshalEvent(rpcResp.Result)
			if err != nil {
				out <- StreamResult{Err: err}
				return
			}

			select {
			case out <- StreamResult{Event: event}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// SendMessage sends a message to the remote agent and returns the final task.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Task, error) {
	var task Task
	if err := c.call(ctx, MethodSendMessage, params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SendText is a convenience method that sends a text message.
func (c *Client) SendText(ctx context.Context, text string) (*Task, error) {
	return c.SendMessage(ctx, SendMessageParams{
		Message: EncodeMessage(janus.NewUserTextMessage(text)),
	})
}

// SendMessageStream sends a message and streams task events until the
// terminal status update.
func (c *Client) SendMessageStream(ctx context.Context, params SendMessageParams) (<-chan StreamResult, error) {
	return c.stream(ctx, MethodStreamMessage, params)
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	if err := c.call(ctx, MethodGetTask, TaskQueryParams{ID: taskID}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks lists tasks matching the given filter.
func (c *Client) ListTasks(ctx context.Context, params TaskListParams) ([]Task, error) {
	var list TaskList
	if err := c.call(ctx, MethodListTasks, params, &list); err != nil {
		return nil, err
	}
	return list.Tasks, nil
}

// CancelTask cancels a live task and returns it in the canceled state.
func (c *Client) CancelTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	if err := c.call(ctx, MethodCancelTask, TaskQueryParams{ID: taskID}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Resubscribe reattaches to a task's event stream. For a terminal task the
// stream carries exactly one status update reporting the terminal state.
func (c *Client) Resubscribe(ctx context.Context, taskID string) (<-chan StreamResult, error) {
	return c.stream(ctx, MethodResubscribe, TaskQueryParams{ID: taskID})
}

// FetchCard fetches the remote agent's discovery card from baseURL.
func FetchCard(ctx context.Context, httpClient *http.Client, baseURL string) (*AgentCard, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+WellKnownCardPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent card request failed: %s", resp.Status)
	}
	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, err
	}
	return &card, nil
}
