package langgraph

import (
	"strings"

	"github.com/spetersoncode/janus"
)

// ProjectRole maps an internal role onto the LangGraph type discriminator:
// user becomes human, everything else becomes ai.
func ProjectRole(r janus.Role) string {
	if r == janus.RoleUser {
		return TypeHuman
	}
	return TypeAI
}

// InternalRole is the inverse mapping: human (or the raw role spelling
// "user") becomes user, everything else becomes agent.
func InternalRole(t string) janus.Role {
	switch t {
	case TypeHuman, string(janus.RoleUser):
		return janus.RoleUser
	default:
		return janus.RoleAgent
	}
}

// ProjectMessage collapses an internal message to LangGraph shape. Content
// is the newline-joined text parts; non-text parts are dropped.
func ProjectMessage(m janus.Message) Message {
	var texts []string
	for _, p := range m.Parts {
		if tp, ok := p.(janus.TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return Message{
		ID:      m.ID,
		Type:    ProjectRole(m.Role),
		Content: strings.Join(texts, "\n"),
	}
}

// ProjectMessages projects a message history in order.
func ProjectMessages(msgs []janus.Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ProjectMessage(m))
	}
	return out
}

// InternalMessage lifts a LangGraph message into the internal shape as a
// single text part.
func InternalMessage(m Message) janus.Message {
	msg := janus.NewMessage(InternalRole(m.Type), janus.NewTextPart(m.Content))
	if m.ID != "" {
		msg.ID = m.ID
	}
	return msg
}
