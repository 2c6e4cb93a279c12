package a2a

import (
	"encoding/json"
	"time"

	"github.com/spetersoncode/janus"
)

// Wire kind discriminator values. The internal representation uses "type"
// with the same variant names; see wire.go for the conversion seam.
const (
	KindMessage             = "message"
	KindTask                = "task"
	KindStatusUpdate        = "status-update"
	KindArtifactUpdate      = "artifact-update"
	KindTextPart            = "text"
	KindFilePart            = "file"
	KindDataPart            = "data"
	KindArtifactPart        = "artifact"
)

// Part represents a segment of an A2A message on the wire.
type Part interface {
	partMarker()
	GetKind() string
}

// TextPart represents a text segment within a message.
type TextPart struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (TextPart) partMarker()       {}
func (p TextPart) GetKind() string { return p.Kind }

// NewTextPart creates a new wire TextPart with the given text.
func NewTextPart(text string) TextPart {
	return TextPart{Kind: KindTextPart, Text: text}
}

// FileContent represents file content, either inline bytes or a URI reference.
type FileContent struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Bytes    string `json:"bytes,omitempty"` // Base64 encoded
	URI      string `json:"uri,omitempty"`
}

// FilePart represents a file included in a message.
type FilePart struct {
	Kind     string         `json:"kind"`
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (FilePart) partMarker()       {}
func (p FilePart) GetKind() string { return p.Kind }

// DataPart represents arbitrary structured data within a message.
type DataPart struct {
	Kind     string         `json:"kind"`
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (DataPart) partMarker()       {}
func (p DataPart) GetKind() string { return p.Kind }

// ArtifactPart references an artifact inline in a message. This is an
// extension kind some producers emit; unknown kinds still decode as
// DataPart so parsing never fails on extensions.
type ArtifactPart struct {
	Kind        string         `json:"kind"`
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	MimeType    string         `json:"mimeType,omitempty"`
	Content     string         `json:"content,omitempty"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (ArtifactPart) partMarker()       {}
func (p ArtifactPart) GetKind() string { return p.Kind }

// UnmarshalPart unmarshals a wire Part from JSON, dispatching on "kind".
func UnmarshalPart(data []byte) (Part, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Kind {
	case KindTextPart:
		var p TextPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindFilePart:
		var p FilePart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindArtifactPart:
		var p ArtifactPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		var p DataPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Message represents a single A2A exchange on the wire.
type Message struct {
	Kind      string         `json:"kind"`
	MessageID string         `json:"messageId"`
	Role      string         `json:"role"`
	Parts     []Part         `json:"parts"`
	ContextID string         `json:"contextId,omitempty"`
	TaskID    string         `json:"taskId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON implements custom JSON unmarshaling for Message. It
// dispatches Parts on their kind and accepts both the "contextId" and the
// legacy "context_id" spellings.
func (m *Message) UnmarshalJSON(data []byte) error {
	type messageAlias Message
	var tmp struct {
		messageAlias
		Parts           []json.RawMessage `json:"parts"`
		LegacyContextID string            `json:"context_id"`
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	*m = Message(tmp.messageAlias)
	if m.ContextID == "" {
		m.ContextID = tmp.LegacyContextID
	}
	m.Parts = make([]Part, 0, len(tmp.Parts))

	for _, raw := range tmp.Parts {
		part, err := UnmarshalPart(raw)
		if err != nil {
			return err
		}
		m.Parts = append(m.Parts, part)
	}

	return nil
}

// TaskStatus represents the current status of a task on the wire.
type TaskStatus struct {
	State     janus.TaskState `json:"state"`
	Message   *Message        `json:"message,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// NewTaskStatus creates a TaskStatus stamped with the current time.
func NewTaskStatus(state janus.TaskState) TaskStatus {
	return TaskStatus{
		State:     state,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Artifact represents a task output on the wire.
type Artifact struct {
	ArtifactID  string         `json:"artifactId"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON implements custom JSON unmarshaling for Artifact.
func (a *Artifact) UnmarshalJSON(data []byte) error {
	type artifactAlias Artifact
	var tmp struct {
		artifactAlias
		Parts []json.RawMessage `json:"parts"`
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	*a = Artifact(tmp.artifactAlias)
	a.Parts = make([]Part, 0, len(tmp.Parts))

	for _, raw := range tmp.Parts {
		part, err := UnmarshalPart(raw)
		if err != nil {
			return err
		}
		a.Parts = append(a.Parts, part)
	}

	return nil
}

// Task represents a unit of work on the wire. State lives under
// status.state, not as a flat field.
type Task struct {
	Kind      string         `json:"kind"`
	ID        string         `json:"id"`
	ContextID string         `json:"contextId"`
	Status    TaskStatus     `json:"status"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	History   []Message      `json:"history,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON implements custom JSON unmarshaling for Task. Like
// Message, it accepts both the "contextId" and the legacy "context_id"
// spellings from third-party producers.
func (t *Task) UnmarshalJSON(data []byte) error {
	type taskAlias Task
	var tmp struct {
		taskAlias
		LegacyContextID string `json:"context_id"`
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	*t = Task(tmp.taskAlias)
	if t.ContextID == "" {
		t.ContextID = tmp.LegacyContextID
	}
	return nil
}

// Event represents an A2A streaming event: a task snapshot, a status
// update, or an artifact update.
type Event interface {
	eventMarker()
	EventKind() string
}

func (Task) eventMarker()                           {}
func (t Task) EventKind() string                    { return t.Kind }
func (TaskStatusUpdateEvent) eventMarker()          {}
func (e TaskStatusUpdateEvent) EventKind() string   { return e.Kind }
func (TaskArtifactUpdateEvent) eventMarker()        {}
func (e TaskArtifactUpdateEvent) EventKind() string { return e.Kind }

// TaskStatusUpdateEvent reports a task state change during streaming.
// Final is true iff the reported state is terminal.
type TaskStatusUpdateEvent struct {
	Kind      string     `json:"kind"`
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final"`
}

// TaskArtifactUpdateEvent reports a new artifact during streaming.
type TaskArtifactUpdateEvent struct {
	Kind      string   `json:"kind"`
	TaskID    string   `json:"taskId"`
	ContextID string   `json:"contextId"`
	Artifact  Artifact `json:"artifact"`
}

// UnmarshalEvent decodes a streaming event, dispatching on its kind.
func UnmarshalEvent(data []byte) (Event, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Kind {
	case KindStatusUpdate:
		var e TaskStatusUpdateEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindArtifactUpdate:
		var e TaskArtifactUpdateEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindTask:
		var t Task
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, Errorf(CodeInvalidRequest, "unknown event kind %q", probe.Kind)
	}
}

// SendMessageParams is the params object for message/send and
// message/stream.
type SendMessageParams struct {
	Message       Message                   `json:"message"`
	Configuration *SendMessageConfiguration `json:"configuration,omitempty"`
	Metadata      map[string]any            `json:"metadata,omitempty"`
}

// SendMessageConfiguration contains options for the send request.
type SendMessageConfiguration struct {
	// AcceptedOutputModes specifies the output formats the client can handle.
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	// HistoryLength controls how much conversation context to include.
	HistoryLength *int `json:"historyLength,omitempty"`
	// Blocking waits for task completion before returning.
	Blocking bool `json:"blocking,omitempty"`
}

// TaskQueryParams is the params object for tasks/get, tasks/cancel, and
// tasks/resubscribe.
type TaskQueryParams struct {
	ID            string `json:"id"`
	HistoryLength *int   `json:"historyLength,omitempty"`
}

// TaskListParams is the params object for tasks/list.
type TaskListParams struct {
	ContextID string            `json:"contextId,omitempty"`
	States    []janus.TaskState `json:"states,omitempty"`
	PageSize  int               `json:"pageSize,omitempty"`
}

// TaskList is the result object for tasks/list.
type TaskList struct {
	Tasks []Task `json:"tasks"`
}
