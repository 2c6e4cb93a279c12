package langgraph

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/store"
)

func newTestClient(t *testing.T, h janus.Handler) (*Client, *store.Store) {
	t.Helper()
	s := store.New()
	handler := NewHandler(s, h, "test-agent", nil)
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL), s
}

func runInput(t *testing.T, input string) RunRequest {
	t.Helper()
	return RunRequest{Input: json.RawMessage(input)}
}

func TestHandler_InfoAndOk(t *testing.T) {
	client, _ := newTestClient(t, janus.NewEchoHandler("Echo: "))

	info, err := client.Info(context.Background())
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if info.Version == "" {
		t.Error("expected version in info")
	}

	if err := client.Ok(context.Background()); err != nil {
		t.Errorf("ok failed: %v", err)
	}
}

func TestHandler_Assistants(t *testing.T) {
	client, _ := newTestClient(t, janus.NewEchoHandler("Echo: "))

	assistants, err := client.SearchAssistants(context.Background())
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(assistants) != 1 {
		t.Fatalf("expected singleton assistant, got %d", len(assistants))
	}
	if assistants[0].Name != "test-agent" {
		t.Errorf("expected name test-agent, got %q", assistants[0].Name)
	}

	got, err := client.GetAssistant(context.Background(), assistants[0].AssistantID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.AssistantID != assistants[0].AssistantID {
		t.Errorf("assistant id mismatch")
	}

	if _, err := client.GetAssistant(context.Background(), "no-such-assistant"); err == nil {
		t.Error("expected error for unknown assistant")
	}
}

func TestHandler_Threads(t *testing.T) {
	client, _ := newTestClient(t, janus.NewEchoHandler("Echo: "))
	ctx := context.Background()

	created, err := client.CreateThread(ctx, CreateThreadRequest{Metadata: map[string]any{"topic": "greetings"}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ThreadID == "" {
		t.Fatal("expected generated thread id")
	}

	got, err := client.GetThread(ctx, created.ThreadID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Metadata["topic"] != "greetings" {
		t.Errorf("metadata not preserved: %v", got.Metadata)
	}

	state, err := client.GetThreadState(ctx, created.ThreadID)
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if len(state.Values.Messages) != 0 {
		t.Errorf("expected empty message mirror, got %d", len(state.Values.Messages))
	}

	threads, err := client.SearchThreads(ctx, SearchRequest{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(threads) != 1 {
		t.Errorf("expected 1 thread, got %d", len(threads))
	}

	if err := client.DeleteThread(ctx, created.ThreadID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := client.GetThread(ctx, created.ThreadID); err == nil {
		t.Error("expected error after delete")
	}
}

func TestHandler_RunWait(t *testing.T) {
	client, _ := newTestClient(t, janus.NewEchoHandler("Echo: "))
	ctx := context.Background()

	thread, err := client.CreateThread(ctx, CreateThreadRequest{})
	if err != nil {
		t.Fatalf("create thread failed: %v", err)
	}

	state, err := client.RunWait(ctx, thread.ThreadID, runInput(t, `{"messages":[{"role":"user","content":"hi"}]}`))
	if err != nil {
		t.Fatalf("run wait failed: %v", err)
	}

	msgs := state.Values.Messages
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Type != TypeHuman || msgs[0].Content != "hi" {
		t.Errorf("unexpected inbound mirror: %+v", msgs[0])
	}
	last := msgs[len(msgs)-1]
	if last.Type != TypeAI {
		t.Errorf("expected trailing ai message, got %q", last.Type)
	}
	if !strings.Contains(last.Content, "Echo: hi") {
		t.Errorf("expected echoed content, got %q", last.Content)
	}
}

func TestHandler_RunWait_Stateless(t *testing.T) {
	client, _ := newTestClient(t, janus.NewEchoHandler("Echo: "))

	state, err := client.RunWaitStateless(context.Background(), runInput(t, `{"content":"ping"}`))
	if err != nil {
		t.Fatalf("stateless run failed: %v", err)
	}
	msgs := state.Values.Messages
	if len(msgs) != 2 || msgs[1].Content != "Echo: ping" {
		t.Errorf("unexpected state: %+v", msgs)
	}
}

func TestHandler_RunWait_UnknownThread(t *testing.T) {
	client, _ := newTestClient(t, janus.NewEchoHandler("Echo: "))

	_, err := client.RunWait(context.Background(), "no-such-thread", runInput(t, `{"content":"hi"}`))
	if err == nil {
		t.Fatal("expected error for unknown thread")
	}
}

func TestHandler_RunStream(t *testing.T) {
	client, _ := newTestClient(t, janus.NewEchoHandler("Echo: "))
	ctx := context.Background()

	thread, err := client.CreateThread(ctx, CreateThreadRequest{})
	if err != nil {
		t.Fatalf("create thread failed: %v", err)
	}

	events, err := client.RunStream(ctx, thread.ThreadID, runInput(t, `{"content":"hi"}`))
	if err != nil {
		t.Fatalf("run stream failed: %v", err)
	}

	var names []string
	var lastValues ThreadValues
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("stream error: %v", ev.Err)
		}
		names = append(names, ev.Event)
		if ev.Event == "values" {
			if err := json.Unmarshal(ev.Data, &lastValues); err != nil {
				t.Fatalf("values frame decode failed: %v", err)
			}
		}
	}

	if len(names) == 0 || names[0] != "metadata" {
		t.Fatalf("expected metadata first, got %v", names)
	}
	if names[len(names)-1] != "end" {
		t.Fatalf("expected end last, got %v", names)
	}
	var sawMessages bool
	for _, n := range names {
		if n == "messages" {
			sawMessages = true
		}
	}
	if !sawMessages {
		t.Errorf("expected a messages frame, got %v", names)
	}
	if len(lastValues.Messages) == 0 {
		t.Fatal("expected accumulated values")
	}
	last := lastValues.Messages[len(lastValues.Messages)-1]
	if last.Type != TypeAI || last.Content != "Echo: hi" {
		t.Errorf("unexpected final values message: %+v", last)
	}
}

func TestHandler_RunStream_HandlerError(t *testing.T) {
	failing := janus.NewReplyHandler(func(ctx context.Context, tc *janus.TaskContext) (janus.Message, error) {
		return janus.Message{}, janus.NewPermanentError("model unavailable", nil)
	})
	client, _ := newTestClient(t, failing)
	ctx := context.Background()

	events, err := client.RunStream(ctx, "", runInput(t, `{"content":"hi"}`))
	if err != nil {
		t.Fatalf("run stream failed: %v", err)
	}

	var names []string
	var errBody ErrorBody
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("stream error: %v", ev.Err)
		}
		names = append(names, ev.Event)
		if ev.Event == "error" {
			if err := json.Unmarshal(ev.Data, &errBody); err != nil {
				t.Fatalf("error frame decode failed: %v", err)
			}
		}
	}

	// The stream must terminate with an error frame, never hang.
	if names[len(names)-1] != "error" {
		t.Fatalf("expected error frame last, got %v", names)
	}
	if errBody.Error == "" {
		t.Error("expected error message in error frame")
	}
}

func TestHandler_RunRecords(t *testing.T) {
	client, _ := newTestClient(t, janus.NewEchoHandler("Echo: "))
	ctx := context.Background()

	thread, err := client.CreateThread(ctx, CreateThreadRequest{})
	if err != nil {
		t.Fatalf("create thread failed: %v", err)
	}
	if _, err := client.RunWait(ctx, thread.ThreadID, runInput(t, `{"content":"hi"}`)); err != nil {
		t.Fatalf("run wait failed: %v", err)
	}

	runs, err := client.ListRuns(ctx, thread.ThreadID)
	if err != nil {
		t.Fatalf("list runs failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != "success" {
		t.Errorf("expected success status, got %q", runs[0].Status)
	}

	got, err := client.GetRun(ctx, thread.ThreadID, runs[0].RunID)
	if err != nil {
		t.Fatalf("get run failed: %v", err)
	}
	if got.RunID != runs[0].RunID {
		t.Error("run id mismatch")
	}

	if _, err := client.GetRun(ctx, thread.ThreadID, "no-such-run"); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestHandler_CrossProtocolVisibility(t *testing.T) {
	// A task created directly in the store under a thread's contextId is
	// observable through the thread surface once its messages are mirrored.
	s := store.New()
	handler := NewHandler(s, janus.NewEchoHandler("Echo: "), "test-agent", nil)
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)

	msg := janus.NewUserTextMessage("from the other side")
	msg.ContextID = "shared-ctx"
	s.CreateTask(msg)

	// CreateTask materializes the thread for its contextId.
	thread, err := client.GetThread(context.Background(), "shared-ctx")
	if err != nil {
		t.Fatalf("expected thread for shared contextId: %v", err)
	}
	if thread.ThreadID != "shared-ctx" {
		t.Errorf("unexpected thread id %q", thread.ThreadID)
	}
}

// trickleHandler reports working, then completes after a short delay
// unless its context is cancelled first.
type trickleHandler struct{ delay time.Duration }

func (h trickleHandler) Run(ctx context.Context, tc *janus.TaskContext) <-chan janus.Update {
	ch := make(chan janus.Update, 2)
	go func() {
		defer close(ch)
		ch <- janus.Update{State: janus.TaskStateWorking}
		select {
		case <-ctx.Done():
			return
		case <-time.After(h.delay):
		}
		msg := janus.NewAgentTextMessage("done")
		ch <- janus.Update{State: janus.TaskStateCompleted, Message: &msg}
	}()
	return ch
}

// A client dropping off a run stream stops frame delivery only; the run
// must still reach its natural terminal state.
func TestHandler_RunStream_ClientDisconnect(t *testing.T) {
	client, s := newTestClient(t, trickleHandler{delay: 200 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := client.RunStream(ctx, "", runInput(t, `{"content":"hi"}`))
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	first := <-events
	if first.Err != nil {
		t.Fatalf("stream error: %v", first.Err)
	}
	if first.Event != "metadata" {
		t.Fatalf("expected metadata frame first, got %q", first.Event)
	}
	var md StreamMetadata
	if err := json.Unmarshal(first.Data, &md); err != nil {
		t.Fatalf("metadata decode failed: %v", err)
	}

	// Disconnect after the first frame; drain whatever the aborted read
	// still delivers.
	cancel()
	for range events {
	}

	rn, err := s.GetRun(md.RunID)
	if err != nil {
		t.Fatalf("get run failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		task, err := s.Get(rn.TaskID)
		if err != nil {
			t.Fatalf("get task failed: %v", err)
		}
		if task.State.IsTerminal() {
			if task.State != janus.TaskStateCompleted {
				t.Errorf("expected completed after disconnect, got %q (error=%v)", task.State, task.Error)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("task never reached a terminal state")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
