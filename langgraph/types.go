package langgraph

import (
	"encoding/json"
	"time"
)

// Message type discriminators used on the LangGraph wire.
const (
	TypeHuman = "human"
	TypeAI    = "ai"
)

// Message is a LangGraph-shaped chat message. Content is plain text; the
// richer part structure of the internal representation does not survive
// the projection.
type Message struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Info is the response of GET /info.
type Info struct {
	Version string         `json:"version"`
	Flags   map[string]any `json:"flags,omitempty"`
}

// Assistant is the singleton assistant registered at construction time.
type Assistant struct {
	AssistantID string         `json:"assistant_id"`
	GraphID     string         `json:"graph_id"`
	Name        string         `json:"name"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Thread is the wire shape of a conversation thread.
type Thread struct {
	ThreadID  string         `json:"thread_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ThreadValues holds the message mirror inside a thread state snapshot.
type ThreadValues struct {
	Messages []Message `json:"messages"`
}

// ThreadState is a point-in-time snapshot of a thread, returned by
// GET /threads/:id/state and by the /runs/wait endpoints.
type ThreadState struct {
	Values ThreadValues `json:"values"`
	Next   []string     `json:"next"`
	Tasks  []any        `json:"tasks"`
}

// Run is the wire shape of one handler invocation against a thread.
type Run struct {
	RunID       string    `json:"run_id"`
	ThreadID    string    `json:"thread_id"`
	AssistantID string    `json:"assistant_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateThreadRequest is the body of POST /threads. All fields are
// optional; an absent thread_id means generate one.
type CreateThreadRequest struct {
	ThreadID string         `json:"thread_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchRequest is the body of POST /assistants/search and
// POST /threads/search.
type SearchRequest struct {
	Limit    int            `json:"limit,omitempty"`
	Offset   int            `json:"offset,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RunRequest is the body of the run creation endpoints. Input is kept raw
// until normalization so any accepted shape passes through.
type RunRequest struct {
	AssistantID string          `json:"assistant_id,omitempty"`
	Input       json.RawMessage `json:"input,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// StreamMetadata is the payload of the metadata SSE frame, sent first on
// every run stream.
type StreamMetadata struct {
	RunID       string `json:"run_id"`
	ThreadID    string `json:"thread_id,omitempty"`
	AssistantID string `json:"assistant_id"`
}

// ErrorBody is the JSON error shape of the REST surface.
type ErrorBody struct {
	Error string `json:"error"`
}
