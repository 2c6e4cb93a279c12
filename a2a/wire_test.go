package a2a

import (
	"encoding/json"
	"testing"

	"github.com/spetersoncode/janus"
)

func TestEncodePart(t *testing.T) {
	t.Run("text part swaps type for kind", func(t *testing.T) {
		wire := EncodePart(janus.NewTextPart("hello"))
		tp, ok := wire.(TextPart)
		if !ok {
			t.Fatalf("expected TextPart, got %T", wire)
		}
		if tp.Kind != KindTextPart {
			t.Errorf("expected kind %q, got %q", KindTextPart, tp.Kind)
		}
		if tp.Text != "hello" {
			t.Errorf("expected text %q, got %q", "hello", tp.Text)
		}

		raw, err := json.Marshal(tp)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if _, present := fields["type"]; present {
			t.Error("wire part must not carry a type field")
		}
		if fields["kind"] != KindTextPart {
			t.Errorf("expected kind field %q, got %v", KindTextPart, fields["kind"])
		}
	})

	t.Run("file part maps to nested file object", func(t *testing.T) {
		p := janus.FilePart{
			Type:     janus.PartTypeFile,
			Name:     "report.pdf",
			MimeType: "application/pdf",
			Base64:   "aGVsbG8=",
		}
		wire := EncodePart(p)
		fp, ok := wire.(FilePart)
		if !ok {
			t.Fatalf("expected FilePart, got %T", wire)
		}
		if fp.File.Name != "report.pdf" || fp.File.MimeType != "application/pdf" {
			t.Errorf("file metadata not carried over: %+v", fp.File)
		}
		if fp.File.Bytes != "aGVsbG8=" {
			t.Errorf("expected inline bytes, got %+v", fp.File)
		}
	})
}

func TestDecodePart(t *testing.T) {
	t.Run("round trip preserves variants", func(t *testing.T) {
		parts := []janus.Part{
			janus.NewTextPart("hi"),
			janus.NewDataPart(map[string]any{"k": "v"}),
			janus.FilePart{Type: janus.PartTypeFile, Name: "f", URL: "https://example.com/f"},
		}
		for _, p := range parts {
			back := DecodePart(EncodePart(p))
			if back.PartType() != p.PartType() {
				t.Errorf("round trip changed type: %q -> %q", p.PartType(), back.PartType())
			}
		}
	})

	t.Run("unknown kind decodes as data", func(t *testing.T) {
		wire, err := UnmarshalPart([]byte(`{"kind":"future-extension","data":{"x":1}}`))
		if err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if _, ok := wire.(DataPart); !ok {
			t.Fatalf("expected DataPart fallback, got %T", wire)
		}
	})
}

func TestEncodeMessage(t *testing.T) {
	t.Run("generates message id when absent", func(t *testing.T) {
		wire := EncodeMessage(janus.NewUserTextMessage("hi"))
		if wire.MessageID == "" {
			t.Error("expected generated messageId")
		}
		if wire.Kind != KindMessage {
			t.Errorf("expected kind %q, got %q", KindMessage, wire.Kind)
		}
		if wire.Role != "user" {
			t.Errorf("expected role user, got %q", wire.Role)
		}
	})
}

func TestDecodeMessage(t *testing.T) {
	t.Run("unknown role becomes user", func(t *testing.T) {
		m := DecodeMessage(Message{Kind: KindMessage, Role: "system", Parts: []Part{NewTextPart("x")}})
		if m.Role != janus.RoleUser {
			t.Errorf("expected role user, got %q", m.Role)
		}
	})

	t.Run("agent role preserved", func(t *testing.T) {
		m := DecodeMessage(Message{Kind: KindMessage, Role: "agent"})
		if m.Role != janus.RoleAgent {
			t.Errorf("expected role agent, got %q", m.Role)
		}
	})

	t.Run("accepts legacy context_id spelling", func(t *testing.T) {
		var wire Message
		raw := `{"kind":"message","role":"user","context_id":"ctx-9","parts":[{"kind":"text","text":"hi"}]}`
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if wire.ContextID != "ctx-9" {
			t.Errorf("expected contextId ctx-9, got %q", wire.ContextID)
		}
	})
}

func TestEncodeTask(t *testing.T) {
	task := &janus.Task{
		ID:    "task-1",
		State: janus.TaskStateCompleted,
		Messages: []janus.Message{
			janus.NewUserTextMessage("Hello"),
			janus.NewAgentTextMessage("Echo: Hello"),
		},
	}

	wire := EncodeTask(task)
	if wire.Kind != KindTask {
		t.Errorf("expected kind %q, got %q", KindTask, wire.Kind)
	}
	if wire.Status.State != janus.TaskStateCompleted {
		t.Errorf("expected status.state completed, got %q", wire.Status.State)
	}
	if wire.Status.Timestamp == "" {
		t.Error("expected status timestamp")
	}
	// With no context the task id doubles as the context id.
	if wire.ContextID != "task-1" {
		t.Errorf("expected contextId fallback to task id, got %q", wire.ContextID)
	}
	if len(wire.History) != 2 {
		t.Fatalf("expected 2 history messages, got %d", len(wire.History))
	}
	if wire.Status.Message == nil {
		t.Fatal("expected status.message set to last agent message")
	}
	if got := wire.Status.Message.Parts[0].(TextPart).Text; got != "Echo: Hello" {
		t.Errorf("expected status message text %q, got %q", "Echo: Hello", got)
	}
}

func TestStatusUpdateEvent(t *testing.T) {
	tests := []struct {
		state janus.TaskState
		final bool
	}{
		{janus.TaskStateSubmitted, false},
		{janus.TaskStateWorking, false},
		{janus.TaskStateInputRequired, false},
		{janus.TaskStateCompleted, true},
		{janus.TaskStateFailed, true},
		{janus.TaskStateCanceled, true},
		{janus.TaskStateRejected, true},
	}
	for _, tt := range tests {
		ev := statusUpdateEvent(&janus.Task{ID: "t", State: tt.state}, nil)
		if ev.Final != tt.final {
			t.Errorf("state %s: expected final=%v, got %v", tt.state, tt.final, ev.Final)
		}
		if ev.Kind != KindStatusUpdate {
			t.Errorf("expected kind %q, got %q", KindStatusUpdate, ev.Kind)
		}
	}
}

func TestUnmarshalEvent(t *testing.T) {
	t.Run("status update", func(t *testing.T) {
		raw := `{"kind":"status-update","taskId":"t1","contextId":"c1","status":{"state":"working"},"final":false}`
		ev, err := UnmarshalEvent([]byte(raw))
		if err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		su, ok := ev.(TaskStatusUpdateEvent)
		if !ok {
			t.Fatalf("expected TaskStatusUpdateEvent, got %T", ev)
		}
		if su.Status.State != janus.TaskStateWorking {
			t.Errorf("expected working, got %q", su.Status.State)
		}
	})

	t.Run("task snapshot", func(t *testing.T) {
		raw := `{"kind":"task","id":"t1","contextId":"c1","status":{"state":"submitted"}}`
		ev, err := UnmarshalEvent([]byte(raw))
		if err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if _, ok := ev.(Task); !ok {
			t.Fatalf("expected Task, got %T", ev)
		}
	})
}

func TestTaskUnmarshal(t *testing.T) {
	t.Run("accepts legacy context_id spelling", func(t *testing.T) {
		var task Task
		raw := `{"kind":"task","id":"t1","context_id":"ctx-legacy","status":{"state":"completed"}}`
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if task.ContextID != "ctx-legacy" {
			t.Errorf("expected contextId ctx-legacy, got %q", task.ContextID)
		}
		if task.Status.State != janus.TaskStateCompleted {
			t.Errorf("expected completed status, got %q", task.Status.State)
		}
	})

	t.Run("canonical spelling wins over legacy", func(t *testing.T) {
		var task Task
		raw := `{"kind":"task","id":"t1","contextId":"ctx-new","context_id":"ctx-old","status":{"state":"working"}}`
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if task.ContextID != "ctx-new" {
			t.Errorf("expected contextId ctx-new, got %q", task.ContextID)
		}
	})
}
