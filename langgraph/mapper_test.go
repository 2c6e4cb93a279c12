package langgraph

import (
	"testing"

	"github.com/spetersoncode/janus"
)

func TestRoleMapping(t *testing.T) {
	t.Run("projection", func(t *testing.T) {
		if got := ProjectRole(janus.RoleUser); got != TypeHuman {
			t.Errorf("expected human, got %q", got)
		}
		if got := ProjectRole(janus.RoleAgent); got != TypeAI {
			t.Errorf("expected ai, got %q", got)
		}
	})

	t.Run("inverse", func(t *testing.T) {
		if got := InternalRole(TypeHuman); got != janus.RoleUser {
			t.Errorf("expected user, got %q", got)
		}
		if got := InternalRole(TypeAI); got != janus.RoleAgent {
			t.Errorf("expected agent, got %q", got)
		}
		// Everything unrecognized maps to agent.
		if got := InternalRole("tool"); got != janus.RoleAgent {
			t.Errorf("expected agent for tool, got %q", got)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		for _, role := range []janus.Role{janus.RoleUser, janus.RoleAgent} {
			if got := InternalRole(ProjectRole(role)); got != role {
				t.Errorf("round trip changed role: %q -> %q", role, got)
			}
		}
	})
}

func TestProjectMessage(t *testing.T) {
	t.Run("text parts join with newline", func(t *testing.T) {
		msg := janus.NewAgentMessage(
			janus.NewTextPart("line one"),
			janus.NewTextPart("line two"),
		)
		projected := ProjectMessage(msg)
		if projected.Type != TypeAI {
			t.Errorf("expected ai, got %q", projected.Type)
		}
		if projected.Content != "line one\nline two" {
			t.Errorf("unexpected content: %q", projected.Content)
		}
	})

	t.Run("non-text parts are dropped", func(t *testing.T) {
		msg := janus.NewUserMessage(
			janus.NewTextPart("keep"),
			janus.NewDataPart(map[string]any{"drop": true}),
		)
		projected := ProjectMessage(msg)
		if projected.Content != "keep" {
			t.Errorf("expected only text content, got %q", projected.Content)
		}
	})
}

func TestInternalMessage(t *testing.T) {
	m := InternalMessage(Message{ID: "m1", Type: TypeHuman, Content: "hello"})
	if m.Role != janus.RoleUser {
		t.Errorf("expected user, got %q", m.Role)
	}
	if m.ID != "m1" {
		t.Errorf("expected id preserved, got %q", m.ID)
	}
	if m.TextContent() != "hello" {
		t.Errorf("expected content hello, got %q", m.TextContent())
	}
}
