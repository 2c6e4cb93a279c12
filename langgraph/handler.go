package langgraph

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/internal/run"
	"github.com/spetersoncode/janus/internal/sse"
	"github.com/spetersoncode/janus/store"
)

// Version reported by GET /info.
const Version = "0.1.0"

// Handler is the LangGraph Platform adapter. It owns the singleton
// assistant; all task and thread state lives in the shared store.
type Handler struct {
	store     *store.Store
	handler   janus.Handler
	assistant Assistant
	log       *slog.Logger
}

// NewHandler creates the adapter over the shared store and task handler.
// The singleton assistant is derived from the agent's name and metadata.
func NewHandler(s *store.Store, h janus.Handler, name string, metadata map[string]any) *Handler {
	now := time.Now().UTC()
	return &Handler{
		store:   s,
		handler: h,
		assistant: Assistant{
			AssistantID: uuid.New().String(),
			GraphID:     "agent",
			Name:        name,
			Metadata:    metadata,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		log: slog.With("adapter", "langgraph"),
	}
}

// Assistant returns the singleton assistant.
func (h *Handler) Assistant() Assistant {
	return h.assistant
}

// Routes builds the REST surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/info", h.handleInfo)
	r.Get("/ok", h.handleOk)

	r.Post("/assistants/search", h.handleAssistantSearch)
	r.Get("/assistants/{assistantID}", h.handleAssistantGet)

	r.Post("/threads", h.handleThreadCreate)
	r.Post("/threads/search", h.handleThreadSearch)
	r.Get("/threads/{threadID}", h.handleThreadGet)
	r.Get("/threads/{threadID}/state", h.handleThreadState)
	r.Delete("/threads/{threadID}", h.handleThreadDelete)

	r.Post("/threads/{threadID}/runs", h.handleRunCreate)
	r.Post("/threads/{threadID}/runs/stream", h.handleRunStream)
	r.Post("/threads/{threadID}/runs/wait", h.handleRunWait)
	r.Get("/threads/{threadID}/runs", h.handleRunList)
	r.Get("/threads/{threadID}/runs/{runID}", h.handleRunGet)

	// Stateless variants allocate an ephemeral thread per run.
	r.Post("/runs/stream", h.handleRunStream)
	r.Post("/runs/wait", h.handleRunWait)

	return r
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, Info{Version: Version})
}

func (h *Handler) handleOk(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleAssistantSearch(w http.ResponseWriter, r *http.Request) {
	// There is exactly one assistant per server instance.
	respondJSON(w, http.StatusOK, []Assistant{h.assistant})
}

func (h *Handler) handleAssistantGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "assistantID")
	if id != h.assistant.AssistantID && id != h.assistant.GraphID {
		respondError(w, http.StatusNotFound, "assistant not found")
		return
	}
	respondJSON(w, http.StatusOK, h.assistant)
}

func (h *Handler) handleThreadCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateThreadRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	t := h.store.CreateThread(req.ThreadID, req.Metadata)
	h.log.Info("thread created", "thread_id", t.ID)
	respondJSON(w, http.StatusOK, wireThread(t))
}

func (h *Handler) handleThreadSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	threads := h.store.ListThreads(req.Limit)
	out := make([]Thread, 0, len(threads))
	for _, t := range threads {
		out = append(out, wireThread(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleThreadGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetThread(chi.URLParam(r, "threadID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	respondJSON(w, http.StatusOK, wireThread(t))
}

func (h *Handler) handleThreadState(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetThread(chi.URLParam(r, "threadID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	respondJSON(w, http.StatusOK, threadState(t))
}

func (h *Handler) handleThreadDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "threadID")
	if err := h.store.DeleteThread(id); err != nil {
		respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	h.log.Info("thread deleted", "thread_id", id)
	respondJSON(w, http.StatusOK, map[string]string{"thread_id": id})
}

// prepareRun decodes the run request and materializes the thread, task and
// run records. An empty threadID allocates an ephemeral thread.
func (h *Handler) prepareRun(r *http.Request, threadID string) (*store.Run, *janus.Task, janus.Message, int, string) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		return nil, nil, janus.Message{}, http.StatusBadRequest, "invalid request body"
	}

	if threadID == "" {
		threadID = h.store.CreateThread("", nil).ID
	} else if _, err := h.store.GetThread(threadID); err != nil {
		return nil, nil, janus.Message{}, http.StatusNotFound, "thread not found"
	}

	assistantID := req.AssistantID
	if assistantID == "" {
		assistantID = h.assistant.AssistantID
	}

	msg := NormalizeInput(req.Input)
	msg.ContextID = threadID
	task := h.store.CreateTask(msg)

	rn, err := h.store.CreateRun(threadID, assistantID, task.ID)
	if err != nil {
		return nil, nil, janus.Message{}, http.StatusNotFound, "thread not found"
	}

	if err := h.store.AppendThreadMessages(threadID, msg); err != nil {
		return nil, nil, janus.Message{}, http.StatusNotFound, "thread not found"
	}

	return rn, task, msg, 0, ""
}

func (h *Handler) handleRunCreate(w http.ResponseWriter, r *http.Request) {
	rn, task, msg, status, errMsg := h.prepareRun(r, chi.URLParam(r, "threadID"))
	if errMsg != "" {
		respondError(w, status, errMsg)
		return
	}
	h.log.Info("run created", "run_id", rn.ID, "thread_id", rn.ThreadID, "task_id", task.ID)

	// Background execution: the run is inspected later via GET or the
	// thread state.
	go func() {
		final, err := run.Drive(context.Background(), h.store, h.handler, task, msg)
		if err != nil {
			h.log.Warn("handler yielded invalid transition", "run_id", rn.ID, "error", err)
		}
		if final != nil {
			h.appendAgentMessages(rn.ThreadID, final.AgentMessages())
		}
	}()

	respondJSON(w, http.StatusOK, h.wireRun(rn))
}

func (h *Handler) handleRunWait(w http.ResponseWriter, r *http.Request) {
	rn, task, msg, status, errMsg := h.prepareRun(r, chi.URLParam(r, "threadID"))
	if errMsg != "" {
		respondError(w, status, errMsg)
		return
	}
	log := h.log.With("run_id", rn.ID, "thread_id", rn.ThreadID)
	log.Info("run started, waiting")

	final, err := run.Drive(r.Context(), h.store, h.handler, task, msg)
	if err != nil {
		log.Warn("handler yielded invalid transition", "error", err)
	}
	if final != nil {
		h.appendAgentMessages(rn.ThreadID, final.AgentMessages())
	}

	t, err := h.store.GetThread(rn.ThreadID)
	if err != nil {
		respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	respondJSON(w, http.StatusOK, threadState(t))
}

func (h *Handler) handleRunStream(w http.ResponseWriter, r *http.Request) {
	rn, task, msg, status, errMsg := h.prepareRun(r, chi.URLParam(r, "threadID"))
	if errMsg != "" {
		respondError(w, status, errMsg)
		return
	}
	log := h.log.With("run_id", rn.ID, "thread_id", rn.ThreadID)
	log.Info("run started, streaming")

	stream, err := sse.NewWriter(w)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	h.sendEvent(stream, "metadata", StreamMetadata{
		RunID:       rn.ID,
		ThreadID:    rn.ThreadID,
		AssistantID: rn.AssistantID,
	})

	// Funnel store events through a channel so frames are written from
	// this goroutine only.
	events := make(chan store.Event, 16)
	done := make(chan struct{})
	defer close(done)
	unsub, suberr := h.store.Subscribe(task.ID, func(ev store.Event) {
		select {
		case events <- ev:
		case <-done:
		}
	})
	if suberr != nil {
		h.sendEvent(stream, "error", ErrorBody{Error: "task vanished before streaming"})
		return
	}
	defer unsub()

	// A cancel may land between task creation and the subscription;
	// re-check so the stream cannot wait on an event never delivered.
	if current, err := h.store.Get(task.ID); err == nil && current.State.IsTerminal() {
		if current.State == janus.TaskStateFailed || current.State == janus.TaskStateRejected {
			h.sendEvent(stream, "error", ErrorBody{Error: taskErrorMessage(current)})
			return
		}
		h.sendEvent(stream, "end", nil)
		return
	}

	// Driven on a background context: a client disconnect stops frame
	// forwarding but the task keeps running to its natural terminal
	// state. BindCancel remains the only cancellation path.
	go func() {
		if _, err := run.Drive(context.Background(), h.store, h.handler, task, msg); err != nil {
			log.Warn("handler yielded invalid transition", "error", err)
		}
	}()

	// Accumulated view starts from the thread mirror, which already holds
	// the inbound message.
	accumulated := h.threadMessages(rn.ThreadID)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if ev.Message != nil {
				projected := ProjectMessage(*ev.Message)
				accumulated = append(accumulated, projected)
				if err := h.store.AppendThreadMessages(rn.ThreadID, *ev.Message); err != nil {
					log.Warn("thread mirror update failed", "error", err)
				}
				h.sendEvent(stream, "messages", []Message{projected})
				h.sendEvent(stream, "values", ThreadValues{Messages: accumulated})
			}
			h.sendEvent(stream, "updates", updatesFrame(accumulated))

			if ev.Final() {
				if ev.Task.State == janus.TaskStateFailed || ev.Task.State == janus.TaskStateRejected {
					h.sendEvent(stream, "error", ErrorBody{Error: taskErrorMessage(ev.Task)})
					return
				}
				h.sendEvent(stream, "end", nil)
				return
			}
		}
	}
}

func (h *Handler) handleRunList(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListRuns(chi.URLParam(r, "threadID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	out := make([]Run, 0, len(runs))
	for _, rn := range runs {
		out = append(out, h.wireRun(rn))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRunGet(w http.ResponseWriter, r *http.Request) {
	rn, err := h.store.GetRun(chi.URLParam(r, "runID"))
	if err != nil || rn.ThreadID != chi.URLParam(r, "threadID") {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	respondJSON(w, http.StatusOK, h.wireRun(rn))
}

func (h *Handler) appendAgentMessages(threadID string, msgs []janus.Message) {
	if len(msgs) == 0 {
		return
	}
	if err := h.store.AppendThreadMessages(threadID, msgs...); err != nil {
		h.log.Warn("thread mirror update failed", "thread_id", threadID, "error", err)
	}
}

func (h *Handler) threadMessages(threadID string) []Message {
	t, err := h.store.GetThread(threadID)
	if err != nil {
		return nil
	}
	return ProjectMessages(t.Messages)
}

func (h *Handler) sendEvent(stream *sse.Writer, event string, v any) {
	if err := stream.SendEvent(event, v); err != nil {
		h.log.Debug("dropping SSE frame", "event", event, "error", err)
	}
}

// wireRun projects a run record, deriving its status from the wrapped
// task's state.
func (h *Handler) wireRun(rn *store.Run) Run {
	status := "pending"
	if task, err := h.store.Get(rn.TaskID); err == nil {
		status = runStatus(task.State)
	}
	return Run{
		RunID:       rn.ID,
		ThreadID:    rn.ThreadID,
		AssistantID: rn.AssistantID,
		Status:      status,
		CreatedAt:   rn.CreatedAt,
		UpdatedAt:   rn.UpdatedAt,
	}
}

func runStatus(state janus.TaskState) string {
	switch state {
	case janus.TaskStateSubmitted:
		return "pending"
	case janus.TaskStateWorking:
		return "running"
	case janus.TaskStateCompleted:
		return "success"
	case janus.TaskStateFailed, janus.TaskStateRejected:
		return "error"
	default:
		return "interrupted"
	}
}

func wireThread(t *store.Thread) Thread {
	return Thread{
		ThreadID:  t.ID,
		Metadata:  t.Metadata,
		Status:    "idle",
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func threadState(t *store.Thread) ThreadState {
	return ThreadState{
		Values: ThreadValues{Messages: ProjectMessages(t.Messages)},
		Next:   []string{},
		Tasks:  []any{},
	}
}

// updatesFrame summarizes the latest agent message in LangGraph's
// node-keyed update shape.
func updatesFrame(accumulated []Message) map[string]any {
	var latest []Message
	for i := len(accumulated) - 1; i >= 0; i-- {
		if accumulated[i].Type == TypeAI {
			latest = []Message{accumulated[i]}
			break
		}
	}
	return map[string]any{"agent": ThreadValues{Messages: latest}}
}

func taskErrorMessage(t *janus.Task) string {
	if t != nil && t.Error != nil {
		return t.Error.Message
	}
	return "task failed"
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorBody{Error: msg})
}
