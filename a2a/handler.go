package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/internal/run"
	"github.com/spetersoncode/janus/internal/sse"
	"github.com/spetersoncode/janus/store"
)

// Request is a JSON-RPC 2.0 request envelope. The id is kept raw so
// string and numeric ids are echoed back unchanged.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Canonical method names.
const (
	MethodSendMessage   = "message/send"
	MethodStreamMessage = "message/stream"
	MethodGetTask       = "tasks/get"
	MethodListTasks     = "tasks/list"
	MethodCancelTask    = "tasks/cancel"
	MethodResubscribe   = "tasks/resubscribe"
)

// methodAliases maps every accepted method spelling, including legacy
// names kept for backward compatibility, to its canonical form.
var methodAliases = map[string]string{
	MethodSendMessage:   MethodSendMessage,
	MethodStreamMessage: MethodStreamMessage,
	MethodGetTask:       MethodGetTask,
	MethodListTasks:     MethodListTasks,
	MethodCancelTask:    MethodCancelTask,
	MethodResubscribe:   MethodResubscribe,

	"tasks/send":          MethodSendMessage,
	"tasks/sendSubscribe": MethodStreamMessage,

	"a2a.SendMessage":       MethodSendMessage,
	"SendMessage":           MethodSendMessage,
	"a2a.SendMessageStream": MethodStreamMessage,
	"SendMessageStream":     MethodStreamMessage,
	"a2a.GetTask":           MethodGetTask,
	"GetTask":               MethodGetTask,
	"a2a.ListTasks":         MethodListTasks,
	"ListTasks":             MethodListTasks,
	"a2a.CancelTask":        MethodCancelTask,
	"CancelTask":            MethodCancelTask,
	"a2a.TaskResubscription": MethodResubscribe,
	"TaskResubscription":     MethodResubscribe,
}

// Handler is the A2A protocol adapter. It owns no task state; everything
// authoritative lives in the shared store.
type Handler struct {
	store   *store.Store
	handler janus.Handler
	card    AgentCard
	log     *slog.Logger
}

// NewHandler creates the adapter over the shared store and task handler.
func NewHandler(s *store.Store, h janus.Handler, card AgentCard) *Handler {
	return &Handler{
		store:   s,
		handler: h,
		card:    card,
		log:     slog.With("adapter", "a2a"),
	}
}

// ServeHTTP handles the JSON-RPC endpoint (POST /).
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, Response{
			JSONRPC: "2.0",
			Error:   NewError(CodeParseError, "failed to parse JSON-RPC request"),
		})
		return
	}

	method, ok := methodAliases[req.Method]
	if !ok {
		h.writeError(w, req.ID, Errorf(CodeMethodNotFound, "method %q not found", req.Method))
		return
	}

	log := h.log.With("method", method)

	switch method {
	case MethodSendMessage:
		h.handleSend(w, r, req)
	case MethodStreamMessage:
		h.handleStream(w, r, req)
	case MethodGetTask:
		h.handleGet(w, req)
	case MethodListTasks:
		h.handleList(w, req)
	case MethodCancelTask:
		h.handleCancel(w, req)
	case MethodResubscribe:
		h.handleResubscribe(w, r, req)
	default:
		log.Error("alias table references unknown method")
		h.writeError(w, req.ID, NewError(CodeInternalError, "internal error"))
	}
}

// decodeSendParams validates the params of message/send and message/stream.
func decodeSendParams(raw json.RawMessage) (*SendMessageParams, *Error) {
	var params SendMessageParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, NewError(CodeInvalidParams, "invalid message/send params")
	}
	if len(params.Message.Parts) == 0 {
		return nil, NewError(CodeInvalidParams, "message must contain at least one part")
	}
	return &params, nil
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request, req Request) {
	params, perr := decodeSendParams(req.Params)
	if perr != nil {
		h.writeError(w, req.ID, perr)
		return
	}

	msg := DecodeMessage(params.Message)
	task := h.store.CreateTask(msg)
	h.log.Info("task submitted", "task_id", task.ID, "context_id", task.ContextID)

	final, err := run.Drive(r.Context(), h.store, h.handler, task, msg)
	if err != nil {
		var ite *store.InvalidTransitionError
		if errors.As(err, &ite) {
			h.writeError(w, req.ID, Errorf(CodeInvalidParams, "invalid state transition %s -> %s", ite.From, ite.To))
			return
		}
		h.writeError(w, req.ID, NewError(CodeInternalError, "internal error"))
		return
	}

	h.writeResult(w, req.ID, EncodeTask(final))
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request, req Request) {
	params, perr := decodeSendParams(req.Params)
	if perr != nil {
		h.writeError(w, req.ID, perr)
		return
	}

	msg := DecodeMessage(params.Message)
	task := h.store.CreateTask(msg)
	log := h.log.With("task_id", task.ID)
	log.Info("task submitted, streaming")

	stream, err := sse.NewWriter(w)
	if err != nil {
		h.writeError(w, req.ID, NewError(CodeInternalError, "streaming not supported"))
		return
	}

	// Initial frame: the task snapshot in the submitted state.
	h.sendFrame(stream, req.ID, EncodeTask(task))

	// Store events are funneled through a channel so frames are written
	// from this goroutine only; a cancel arriving on another request's
	// goroutine must not race the response writer.
	events, unsub, suberr := h.forwardEvents(task.ID)
	if suberr != nil {
		log.Error("subscribe failed", "error", suberr)
		return
	}
	defer unsub()

	// A cancel may land between CreateTask and the subscription; re-check
	// so the stream cannot wait on an event that was never delivered.
	if current, err := h.store.Get(task.ID); err == nil && current.State.IsTerminal() {
		h.sendFrame(stream, req.ID, statusUpdateEvent(current, nil))
		return
	}

	// Drive guarantees a terminal transition, so a final event always
	// arrives, including on handler failure. Driven on a background
	// context: a client disconnect is an unsubscribe, the task keeps
	// running to its natural terminal state. BindCancel remains the
	// only cancellation path.
	go func() {
		if _, err := run.Drive(context.Background(), h.store, h.handler, task, msg); err != nil {
			log.Warn("handler yielded invalid transition", "error", err)
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if ev.Artifact != nil {
				h.sendFrame(stream, req.ID, artifactUpdateEvent(ev.Task, *ev.Artifact))
				continue
			}
			h.sendFrame(stream, req.ID, statusUpdateEvent(ev.Task, ev.Message))
			if ev.Final() {
				return
			}
		}
	}
}

// forwardEvents subscribes to the task and funnels its events into a
// channel. The notifier blocks until the event is consumed or the stream
// ends, preserving order without racing the response writer. The returned
// disposer must be called when the stream ends.
func (h *Handler) forwardEvents(taskID string) (<-chan store.Event, func(), error) {
	events := make(chan store.Event, 16)
	done := make(chan struct{})

	unsub, err := h.store.Subscribe(taskID, func(ev store.Event) {
		select {
		case events <- ev:
		case <-done:
		}
	})
	if err != nil {
		return nil, nil, err
	}

	var closed bool
	dispose := func() {
		unsub()
		if !closed {
			closed = true
			close(done)
		}
	}
	return events, dispose, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, req Request) {
	var params TaskQueryParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.ID == "" {
		h.writeError(w, req.ID, NewError(CodeInvalidParams, "task id is required"))
		return
	}

	task, err := h.store.Get(params.ID)
	if err != nil {
		h.writeError(w, req.ID, Errorf(CodeTaskNotFound, "task %s not found", params.ID))
		return
	}

	h.writeResult(w, req.ID, EncodeTask(task))
}

func (h *Handler) handleList(w http.ResponseWriter, req Request) {
	var params TaskListParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			h.writeError(w, req.ID, NewError(CodeInvalidParams, "invalid tasks/list params"))
			return
		}
	}

	tasks := h.store.List(store.Filter{
		ContextID: params.ContextID,
		States:    params.States,
	}, params.PageSize)

	result := TaskList{Tasks: make([]Task, 0, len(tasks))}
	for _, t := range tasks {
		result.Tasks = append(result.Tasks, EncodeTask(t))
	}
	h.writeResult(w, req.ID, result)
}

func (h *Handler) handleCancel(w http.ResponseWriter, req Request) {
	var params TaskQueryParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.ID == "" {
		h.writeError(w, req.ID, NewError(CodeInvalidParams, "task id is required"))
		return
	}

	current, err := h.store.Get(params.ID)
	if err != nil {
		h.writeError(w, req.ID, Errorf(CodeTaskNotFound, "task %s not found", params.ID))
		return
	}
	if current.State.IsTerminal() {
		h.writeError(w, req.ID, Errorf(CodeInvalidParams, "Cannot cancel task in state %s", current.State))
		return
	}

	task, err := h.store.Cancel(params.ID, nil)
	if err != nil {
		var ite *store.InvalidTransitionError
		if errors.As(err, &ite) {
			h.writeError(w, req.ID, Errorf(CodeInvalidParams, "Cannot cancel task in state %s", ite.From))
			return
		}
		h.writeError(w, req.ID, Errorf(CodeTaskNotFound, "task %s not found", params.ID))
		return
	}

	h.log.Info("task cancelled", "task_id", task.ID)
	h.writeResult(w, req.ID, EncodeTask(task))
}

func (h *Handler) handleResubscribe(w http.ResponseWriter, r *http.Request, req Request) {
	var params TaskQueryParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.ID == "" {
		h.writeError(w, req.ID, NewError(CodeInvalidParams, "task id is required"))
		return
	}

	task, err := h.store.Get(params.ID)
	if err != nil {
		h.writeError(w, req.ID, Errorf(CodeTaskNotFound, "task %s not found", params.ID))
		return
	}

	stream, serr := sse.NewWriter(w)
	if serr != nil {
		h.writeError(w, req.ID, NewError(CodeInternalError, "streaming not supported"))
		return
	}

	// Replay the current state first. For a terminal task that single
	// frame is the whole stream.
	h.sendFrame(stream, req.ID, statusUpdateEvent(task, nil))
	if task.State.IsTerminal() {
		return
	}

	// Live phase: forward transitions until terminal or disconnect.
	events, unsub, suberr := h.forwardEvents(task.ID)
	if suberr != nil {
		return
	}
	defer unsub()

	// The task may have gone terminal between the replay frame and the
	// subscription; re-check so the stream cannot wait forever.
	if current, err := h.store.Get(task.ID); err == nil && current.State.IsTerminal() {
		h.sendFrame(stream, req.ID, statusUpdateEvent(current, nil))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			// Client disconnect unsubscribes but does not cancel the task.
			return
		case ev := <-events:
			if ev.Artifact != nil {
				h.sendFrame(stream, req.ID, artifactUpdateEvent(ev.Task, *ev.Artifact))
				continue
			}
			h.sendFrame(stream, req.ID, statusUpdateEvent(ev.Task, ev.Message))
			if ev.Final() {
				return
			}
		}
	}
}

// sendFrame writes one SSE frame holding a JSON-RPC-enveloped result.
func (h *Handler) sendFrame(stream *sse.Writer, id json.RawMessage, result any) {
	if err := stream.Send(Response{JSONRPC: "2.0", ID: id, Result: result}); err != nil {
		h.log.Debug("dropping SSE frame", "error", err)
	}
}

func (h *Handler) writeResult(w http.ResponseWriter, id json.RawMessage, result any) {
	writeResponse(w, Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (h *Handler) writeError(w http.ResponseWriter, id json.RawMessage, rpcErr *Error) {
	writeResponse(w, Response{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
