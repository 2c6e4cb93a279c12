package a2a

import (
	"time"

	"github.com/google/uuid"

	"github.com/spetersoncode/janus"
)

// This file is the single seam between the internal representation
// (discriminator key "type") and the A2A wire format (discriminator key
// "kind"). EncodePart and DecodePart are total inverses: for any internal
// part p, DecodePart(EncodePart(p)) == p.

// EncodePart converts an internal part to its wire form.
func EncodePart(p janus.Part) Part {
	switch v := p.(type) {
	case janus.TextPart:
		return TextPart{Kind: KindTextPart, Text: v.Text, Metadata: v.Metadata}
	case janus.FilePart:
		return FilePart{
			Kind: KindFilePart,
			File: FileContent{
				Name:     v.Name,
				MimeType: v.MimeType,
				Bytes:    v.Base64,
				URI:      v.URL,
			},
			Metadata: v.Metadata,
		}
	case janus.ArtifactPart:
		return ArtifactPart{
			Kind:        KindArtifactPart,
			ID:          v.ID,
			Name:        v.Name,
			MimeType:    v.MimeType,
			Content:     v.Content,
			Description: v.Description,
			Metadata:    v.Metadata,
		}
	case janus.DataPart:
		return DataPart{Kind: KindDataPart, Data: v.Data, Metadata: v.Metadata}
	default:
		return DataPart{Kind: KindDataPart}
	}
}

// DecodePart converts a wire part to its internal form.
func DecodePart(p Part) janus.Part {
	switch v := p.(type) {
	case TextPart:
		return janus.TextPart{Type: janus.PartTypeText, Text: v.Text, Metadata: v.Metadata}
	case FilePart:
		return janus.FilePart{
			Type:     janus.PartTypeFile,
			Name:     v.File.Name,
			MimeType: v.File.MimeType,
			Base64:   v.File.Bytes,
			URL:      v.File.URI,
			Metadata: v.Metadata,
		}
	case ArtifactPart:
		return janus.ArtifactPart{
			Type:        janus.PartTypeArtifact,
			ID:          v.ID,
			Name:        v.Name,
			MimeType:    v.MimeType,
			Content:     v.Content,
			Description: v.Description,
			Metadata:    v.Metadata,
		}
	case DataPart:
		return janus.DataPart{Type: janus.PartTypeData, Data: v.Data, Metadata: v.Metadata}
	default:
		return janus.DataPart{Type: janus.PartTypeData}
	}
}

// EncodeParts converts a slice of internal parts to wire parts.
func EncodeParts(parts []janus.Part) []Part {
	out := make([]Part, 0, len(parts))
	for _, p := range parts {
		out = append(out, EncodePart(p))
	}
	return out
}

// DecodeParts converts a slice of wire parts to internal parts.
func DecodeParts(parts []Part) []janus.Part {
	out := make([]janus.Part, 0, len(parts))
	for _, p := range parts {
		out = append(out, DecodePart(p))
	}
	return out
}

// EncodeMessage converts an internal message to the wire form. Outbound
// messages require a messageId; one is generated if absent.
func EncodeMessage(m janus.Message) Message {
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}
	return Message{
		Kind:      KindMessage,
		MessageID: id,
		Role:      string(m.Role),
		Parts:     EncodeParts(m.Parts),
		ContextID: m.ContextID,
		TaskID:    m.TaskID,
		Metadata:  m.Metadata,
	}
}

// DecodeMessage converts a wire message to the internal form. Unknown
// roles map to user so third-party producers cannot impersonate the agent.
func DecodeMessage(m Message) janus.Message {
	role := janus.RoleUser
	if m.Role == string(janus.RoleAgent) {
		role = janus.RoleAgent
	}
	return janus.Message{
		ID:        m.MessageID,
		Role:      role,
		Parts:     DecodeParts(m.Parts),
		ContextID: m.ContextID,
		TaskID:    m.TaskID,
		Metadata:  m.Metadata,
	}
}

// EncodeArtifact converts an internal artifact to the wire form.
func EncodeArtifact(a janus.Artifact) Artifact {
	return Artifact{
		ArtifactID:  a.ID,
		Name:        a.Name,
		Description: a.Description,
		Parts:       EncodeParts(a.Parts),
		Metadata:    a.Metadata,
	}
}

// DecodeArtifact converts a wire artifact to the internal form.
func DecodeArtifact(a Artifact) janus.Artifact {
	return janus.Artifact{
		ID:          a.ArtifactID,
		Name:        a.Name,
		Description: a.Description,
		Parts:       DecodeParts(a.Parts),
		Metadata:    a.Metadata,
	}
}

// EncodeTask converts an internal task to the wire form: the flat state
// becomes status.state plus a timestamp, history carries the message log,
// and contextId falls back to the task id so it is never empty on the
// wire. The status message is the latest agent message, if any.
func EncodeTask(t *janus.Task) Task {
	contextID := t.ContextID
	if contextID == "" {
		contextID = t.ID
	}

	status := TaskStatus{
		State:     t.State,
		Timestamp: t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if last := t.LastAgentMessage(); last != nil {
		m := EncodeMessage(*last)
		status.Message = &m
	}

	wire := Task{
		Kind:      KindTask,
		ID:        t.ID,
		ContextID: contextID,
		Status:    status,
		Metadata:  t.Metadata,
	}
	for _, m := range t.Messages {
		wire.History = append(wire.History, EncodeMessage(m))
	}
	for _, a := range t.Artifacts {
		wire.Artifacts = append(wire.Artifacts, EncodeArtifact(a))
	}
	return wire
}

// statusUpdateEvent builds the streaming event for a committed transition.
func statusUpdateEvent(t *janus.Task, msg *janus.Message) TaskStatusUpdateEvent {
	status := NewTaskStatus(t.State)
	if msg != nil {
		m := EncodeMessage(*msg)
		status.Message = &m
	}
	return TaskStatusUpdateEvent{
		Kind:      KindStatusUpdate,
		TaskID:    t.ID,
		ContextID: t.ContextID,
		Status:    status,
		Final:     t.State.IsTerminal(),
	}
}

// artifactUpdateEvent builds the streaming event for an appended artifact.
func artifactUpdateEvent(t *janus.Task, a janus.Artifact) TaskArtifactUpdateEvent {
	return TaskArtifactUpdateEvent{
		Kind:      KindArtifactUpdate,
		TaskID:    t.ID,
		ContextID: t.ContextID,
		Artifact:  EncodeArtifact(a),
	}
}
