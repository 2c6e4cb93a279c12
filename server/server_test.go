package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/a2a"
	"github.com/spetersoncode/janus/langgraph"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	srv := New(Config{}, a2a.DefaultCard("janus-test", "dual-protocol test agent"), janus.NewEchoHandler("Echo: "))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, srv
}

func TestRouting_AgentCard(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{a2a.WellKnownCardPath, a2a.WellKnownCardPathNoExt} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		var card a2a.AgentCard
		if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		resp.Body.Close()
		if card.Name != "janus-test" {
			t.Errorf("%s: expected card name janus-test, got %q", path, card.Name)
		}
	}
}

func TestRouting_RootPostIsA2A(t *testing.T) {
	ts, _ := newTestServer(t)
	client := a2a.NewClient(ts.URL)

	task, err := client.SendText(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if task.Status.State != janus.TaskStateCompleted {
		t.Errorf("expected completed, got %q", task.Status.State)
	}
}

func TestRouting_LangGraphSurface(t *testing.T) {
	ts, _ := newTestServer(t)
	client := langgraph.NewClient(ts.URL)
	ctx := context.Background()

	if err := client.Ok(ctx); err != nil {
		t.Fatalf("ok failed: %v", err)
	}

	thread, err := client.CreateThread(ctx, langgraph.CreateThreadRequest{})
	if err != nil {
		t.Fatalf("create thread failed: %v", err)
	}

	state, err := client.RunWait(ctx, thread.ThreadID, langgraph.RunRequest{
		Input: json.RawMessage(`{"messages":[{"role":"user","content":"hi"}]}`),
	})
	if err != nil {
		t.Fatalf("run wait failed: %v", err)
	}
	msgs := state.Values.Messages
	if len(msgs) == 0 {
		t.Fatal("expected messages in state")
	}
	last := msgs[len(msgs)-1]
	if last.Type != langgraph.TypeAI || !strings.Contains(last.Content, "Echo: hi") {
		t.Errorf("unexpected final message: %+v", last)
	}
}

func TestRouting_CrossProtocolVisibility(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()

	// Create the thread through LangGraph, then address it from A2A via
	// the shared contextId.
	lg := langgraph.NewClient(ts.URL)
	thread, err := lg.CreateThread(ctx, langgraph.CreateThreadRequest{ThreadID: "shared-ctx"})
	if err != nil {
		t.Fatalf("create thread failed: %v", err)
	}

	a2aClient := a2a.NewClient(ts.URL)
	msg := a2a.EncodeMessage(janus.NewUserTextMessage("ping"))
	msg.ContextID = thread.ThreadID
	if _, err := a2aClient.SendMessage(ctx, a2a.SendMessageParams{Message: msg}); err != nil {
		t.Fatalf("a2a send failed: %v", err)
	}

	// The task created over A2A lists under the shared context.
	tasks, err := a2aClient.ListTasks(ctx, a2a.TaskListParams{ContextID: "shared-ctx"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task in shared context, got %d", len(tasks))
	}

	// And the thread remains observable through LangGraph.
	if _, err := lg.GetThread(ctx, "shared-ctx"); err != nil {
		t.Errorf("thread vanished from LangGraph surface: %v", err)
	}
}

func TestRouting_CORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/threads", nil)
	if err != nil {
		t.Fatalf("request creation failed: %v", err)
	}
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected preflight success, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected Access-Control-Allow-Origin header")
	}
}

func TestRouting_UnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/definitely/not/a/route")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
