package janus

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Role indicates the originator of a message.
type Role string

const (
	// RoleUser is the role for messages from the user/client.
	RoleUser Role = "user"
	// RoleAgent is the role for messages from the agent/server.
	RoleAgent Role = "agent"
)

// Message represents a single exchange unit between a user and an agent.
type Message struct {
	ID        string         `json:"messageId,omitempty"`
	Role      Role           `json:"role"`
	Parts     []Part         `json:"parts"`
	ContextID string         `json:"contextId,omitempty"`
	TaskID    string         `json:"taskId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMessage creates a new message with the given role and parts.
func NewMessage(role Role, parts ...Part) Message {
	return Message{
		ID:    uuid.New().String(),
		Role:  role,
		Parts: parts,
	}
}

// NewUserMessage creates a new user message with the given parts.
func NewUserMessage(parts ...Part) Message {
	return NewMessage(RoleUser, parts...)
}

// NewAgentMessage creates a new agent message with the given parts.
func NewAgentMessage(parts ...Part) Message {
	return NewMessage(RoleAgent, parts...)
}

// NewUserTextMessage creates a new user message holding a single text part.
func NewUserTextMessage(text string) Message {
	return NewUserMessage(NewTextPart(text))
}

// NewAgentTextMessage creates a new agent message holding a single text part.
func NewAgentTextMessage(text string) Message {
	return NewAgentMessage(NewTextPart(text))
}

// TextContent returns the concatenated text from all TextParts in the message.
func (m Message) TextContent() string {
	var text string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			text += tp.Text
		}
	}
	return text
}

// UnmarshalJSON implements custom JSON unmarshaling for Message.
// Needed because Parts is a []Part interface slice which cannot be
// unmarshaled directly.
func (m *Message) UnmarshalJSON(data []byte) error {
	type messageAlias Message
	var tmp struct {
		messageAlias
		Parts []json.RawMessage `json:"parts"`
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	*m = Message(tmp.messageAlias)
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

// Artifact represents an output generated during task execution.
type Artifact struct {
	ID          string         `json:"artifactId"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewArtifact creates a new artifact with the given parts.
func NewArtifact(name, description string, parts ...Part) Artifact {
	return Artifact{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Parts:       parts,
	}
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
