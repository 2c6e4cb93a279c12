package janus

import "time"

// TaskState represents the lifecycle state of a task.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateFailed        TaskState = "failed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateRejected      TaskState = "rejected"
)

// IsTerminal returns true if the state permits no further transitions.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected:
		return true
	default:
		return false
	}
}

// validTransitions is the complete state machine. A (from, to) pair absent
// from this table is invalid; terminal states have no entries.
var validTransitions = map[TaskState][]TaskState{
	TaskStateSubmitted:     {TaskStateWorking, TaskStateCanceled, TaskStateRejected},
	TaskStateWorking:       {TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateInputRequired},
	TaskStateInputRequired: {TaskStateWorking, TaskStateCanceled},
	TaskStateAuthRequired:  {TaskStateWorking, TaskStateCanceled},
}

// CanTransition reports whether moving from one state to another is allowed.
func CanTransition(from, to TaskState) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TaskError carries the failure detail for a task in the failed state.
// Data holds auxiliary structured information; the "retryable" key is an
// advisory hint that resubmission may succeed.
type TaskError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return e.Message
}

// Retryable reports the advisory retryable hint, false if absent.
func (e *TaskError) Retryable() bool {
	if e.Data == nil {
		return false
	}
	b, _ := e.Data["retryable"].(bool)
	return b
}

// Task represents one tracked unit of agent work.
type Task struct {
	ID        string         `json:"id"`
	ContextID string         `json:"contextId"`
	State     TaskState      `json:"state"`
	Messages  []Message      `json:"messages"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Error     *TaskError     `json:"error,omitempty"`
}

// Clone returns a deep-enough copy of the task: the message, artifact, and
// metadata containers are copied so callers cannot mutate stored state.
// Part values are immutable by convention and shared.
func (t *Task) Clone() *Task {
	c := *t
	c.Messages = make([]Message, len(t.Messages))
	copy(c.Messages, t.Messages)
	if t.Artifacts != nil {
		c.Artifacts = make([]Artifact, len(t.Artifacts))
		copy(c.Artifacts, t.Artifacts)
	}
	if t.Metadata != nil {
		c.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// AgentMessages returns the agent-role messages of the task in order.
func (t *Task) AgentMessages() []Message {
	var out []Message
	for _, m := range t.Messages {
		if m.Role == RoleAgent {
			out = append(out, m)
		}
	}
	return out
}

// LastAgentMessage returns the most recent agent message, or nil.
func (t *Task) LastAgentMessage() *Message {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleAgent {
			m := t.Messages[i]
			return &m
		}
	}
	return nil
}
