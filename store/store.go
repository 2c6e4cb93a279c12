package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/spetersoncode/janus"
)

// Event is delivered to task subscribers on every committed mutation.
// Artifact is set for artifact appends; otherwise the event reports a
// state transition, with Message carrying the transition's message if any.
type Event struct {
	Task     *janus.Task
	Message  *janus.Message
	Artifact *janus.Artifact
}

// Final reports whether this event carries a terminal state.
func (e Event) Final() bool {
	return e.Artifact == nil && e.Task.State.IsTerminal()
}

// SubscriberFunc receives task events. It is invoked synchronously, in
// mutation order, after the mutation has been committed.
type SubscriberFunc func(Event)

// Store is the in-memory registry of tasks and their thread/run
// projections. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	tasks   map[string]*janus.Task
	order   []string // task ids in creation order
	subs    map[string]map[int]SubscriberFunc
	nextSub int
	cancels map[string]context.CancelFunc

	threads      map[string]*Thread
	runs         map[string]*Run
	runsByThread map[string][]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		tasks:        make(map[string]*janus.Task),
		subs:         make(map[string]map[int]SubscriberFunc),
		cancels:      make(map[string]context.CancelFunc),
		threads:      make(map[string]*Thread),
		runs:         make(map[string]*Run),
		runsByThread: make(map[string][]string),
	}
}

// NewTaskID allocates a task identifier. ULIDs are lexicographically
// ordered by creation time, giving the monotonic assignment the protocol
// surfaces rely on for stable listing.
func NewTaskID() string {
	return ulid.Make().String()
}

// CreateTask allocates a new task in the submitted state with the given
// triggering message at history index 0. If the message carries no
// contextId a fresh one is generated; it is never left empty because both
// wire formats require it. The task's thread is materialized as a side
// effect so the conversation is observable through the LangGraph surface.
func (s *Store) CreateTask(msg janus.Message) *janus.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	contextID := msg.ContextID
	if contextID == "" {
		contextID = uuid.New().String()
	}

	now := time.Now().UTC()
	task := &janus.Task{
		ID:        NewTaskID(),
		ContextID: contextID,
		State:     janus.TaskStateSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	msg.ContextID = contextID
	msg.TaskID = task.ID
	task.Messages = []janus.Message{msg}

	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	s.ensureThreadLocked(contextID)

	return task.Clone()
}

// Get returns a copy of the task, or ErrTaskNotFound.
func (s *Store) Get(taskID string) (*janus.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return task.Clone(), nil
}

// Filter selects tasks for List. Zero values match everything.
type Filter struct {
	ContextID string
	States    []janus.TaskState
}

func (f Filter) matches(t *janus.Task) bool {
	if f.ContextID != "" && t.ContextID != f.ContextID {
		return false
	}
	if len(f.States) > 0 {
		ok := false
		for _, st := range f.States {
			if t.State == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// List returns tasks matching the filter in creation order, truncated to
// pageSize. A pageSize <= 0 means no truncation.
func (s *Store) List(f Filter, pageSize int) []*janus.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*janus.Task
	for _, id := range s.order {
		task := s.tasks[id]
		if !f.matches(task) {
			continue
		}
		out = append(out, task.Clone())
		if pageSize > 0 && len(out) == pageSize {
			break
		}
	}
	return out
}

// Transition moves the task to a new state, appending msg to history when
// present, and notifies subscribers. Invalid moves per the state machine
// return InvalidTransitionError with the task unchanged.
func (s *Store) Transition(taskID string, state janus.TaskState, msg *janus.Message) (*janus.Task, error) {
	return s.transition(taskID, state, msg, nil)
}

// Fail transitions the task to failed and records the task error. The
// message, when present, is the synthesized agent message describing the
// failure.
func (s *Store) Fail(taskID string, terr *janus.TaskError, msg *janus.Message) (*janus.Task, error) {
	return s.transition(taskID, janus.TaskStateFailed, msg, terr)
}

// Reject transitions the task to rejected and records the task error.
// Used for tasks that fail before ever reaching working, since the state
// machine has no submitted -> failed edge.
func (s *Store) Reject(taskID string, terr *janus.TaskError, msg *janus.Message) (*janus.Task, error) {
	return s.transition(taskID, janus.TaskStateRejected, msg, terr)
}

func (s *Store) transition(taskID string, state janus.TaskState, msg *janus.Message, terr *janus.TaskError) (*janus.Task, error) {
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	if !janus.CanTransition(task.State, state) {
		from := task.State
		s.mu.Unlock()
		return nil, &InvalidTransitionError{TaskID: taskID, From: from, To: state}
	}

	task.State = state
	task.UpdatedAt = time.Now().UTC()
	if terr != nil {
		task.Error = terr
	}
	if msg != nil {
		m := *msg
		m.ContextID = task.ContextID
		m.TaskID = task.ID
		task.Messages = append(task.Messages, m)
		msg = &m
	}

	snapshot := task.Clone()
	subs := s.snapshotSubsLocked(taskID)
	if state.IsTerminal() {
		delete(s.subs, taskID)
		delete(s.cancels, taskID)
	}
	s.mu.Unlock()

	s.notify(subs, Event{Task: snapshot, Message: msg})
	return snapshot, nil
}

// AddArtifact appends an artifact to the task and notifies subscribers
// with an artifact event. Artifacts may only be added to live tasks.
func (s *Store) AddArtifact(taskID string, artifact janus.Artifact) (*janus.Task, error) {
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	if task.State.IsTerminal() {
		from := task.State
		s.mu.Unlock()
		return nil, &InvalidTransitionError{TaskID: taskID, From: from, To: from}
	}

	task.Artifacts = append(task.Artifacts, artifact)
	task.UpdatedAt = time.Now().UTC()

	snapshot := task.Clone()
	subs := s.snapshotSubsLocked(taskID)
	s.mu.Unlock()

	s.notify(subs, Event{Task: snapshot, Artifact: &artifact})
	return snapshot, nil
}

// Subscribe registers fn to receive every subsequent event for the task
// and returns a disposer. The disposer is idempotent and safe to call from
// within fn. Subscribing to an already-terminal task succeeds; replaying
// the current state is the adapter's concern.
func (s *Store) Subscribe(taskID string, fn SubscriberFunc) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return nil, ErrTaskNotFound
	}

	id := s.nextSub
	s.nextSub++
	if s.subs[taskID] == nil {
		s.subs[taskID] = make(map[int]SubscriberFunc)
	}
	s.subs[taskID][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if set, ok := s.subs[taskID]; ok {
			delete(set, id)
		}
	}, nil
}

// BindCancel associates a cancel function with a live task. Cancelling the
// task through either protocol invokes it, aborting any in-flight
// generation tied to the task's context.
func (s *Store) BindCancel(taskID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[taskID]; ok && !task.State.IsTerminal() {
		s.cancels[taskID] = cancel
	}
}

// Cancel transitions the task to canceled, invokes its bound cancel
// function, and notifies subscribers. Cancelling a terminal task returns
// InvalidTransitionError.
func (s *Store) Cancel(taskID string, msg *janus.Message) (*janus.Task, error) {
	s.mu.Lock()
	cancel := s.cancels[taskID]
	s.mu.Unlock()

	task, err := s.transition(taskID, janus.TaskStateCanceled, msg, nil)
	if err != nil {
		return nil, err
	}
	if cancel != nil {
		cancel()
	}
	return task, nil
}

// snapshotSubsLocked copies the subscriber set so callbacks run outside
// the lock. A subscriber removed between snapshot and invocation may still
// observe one final event; removal only guarantees no events after the
// disposer returns with the lock held.
func (s *Store) snapshotSubsLocked(taskID string) []SubscriberFunc {
	set := s.subs[taskID]
	if len(set) == 0 {
		return nil
	}
	out := make([]SubscriberFunc, 0, len(set))
	for _, fn := range set {
		out = append(out, fn)
	}
	return out
}

func (s *Store) notify(subs []SubscriberFunc, ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
