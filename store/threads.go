package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/spetersoncode/janus"
)

// Thread is the conversation-level grouping served by the LangGraph
// adapter. Its id doubles as the contextId shared by the tasks of the
// conversation; Messages is the accumulated message mirror backing the
// thread's values snapshot.
type Thread struct {
	ID        string
	Messages  []janus.Message
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Thread) clone() *Thread {
	c := *t
	c.Messages = make([]janus.Message, len(t.Messages))
	copy(c.Messages, t.Messages)
	if t.Metadata != nil {
		c.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Run is one invocation of the handler against a thread. It maps 1:1 to a
// task; the run's observable status is a projection of the task's state.
type Run struct {
	ID          string
	ThreadID    string
	AssistantID string
	TaskID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateThread allocates a new thread. An empty id means generate one.
func (s *Store) CreateThread(id string, metadata map[string]any) *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.New().String()
	}
	if existing, ok := s.threads[id]; ok {
		return existing.clone()
	}

	now := time.Now().UTC()
	t := &Thread{
		ID:        id,
		Messages:  []janus.Message{},
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.threads[id] = t
	return t.clone()
}

// ensureThreadLocked materializes a thread record for a contextId created
// through the A2A surface. Callers must hold s.mu.
func (s *Store) ensureThreadLocked(id string) {
	if _, ok := s.threads[id]; ok {
		return
	}
	now := time.Now().UTC()
	s.threads[id] = &Thread{
		ID:        id,
		Messages:  []janus.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetThread returns a point-in-time copy of the thread, or ErrThreadNotFound.
func (s *Store) GetThread(id string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[id]
	if !ok {
		return nil, ErrThreadNotFound
	}
	return t.clone(), nil
}

// ListThreads returns threads in no particular order, truncated to limit.
// A limit <= 0 means no truncation.
func (s *Store) ListThreads(limit int) []*Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Thread
	for _, t := range s.threads {
		out = append(out, t.clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// DeleteThread removes the thread and its run records. Tasks created under
// the thread's contextId remain; they are process-lifetime records.
func (s *Store) DeleteThread(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[id]; !ok {
		return ErrThreadNotFound
	}
	delete(s.threads, id)
	for _, runID := range s.runsByThread[id] {
		delete(s.runs, runID)
	}
	delete(s.runsByThread, id)
	return nil
}

// AppendThreadMessages appends messages to the thread's mirror.
func (s *Store) AppendThreadMessages(id string, msgs ...janus.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	if !ok {
		return ErrThreadNotFound
	}
	t.Messages = append(t.Messages, msgs...)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateRun records a run wrapping the given task on the thread.
func (s *Store) CreateRun(threadID, assistantID, taskID string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[threadID]; !ok {
		return nil, ErrThreadNotFound
	}

	now := time.Now().UTC()
	run := &Run{
		ID:          NewTaskID(),
		ThreadID:    threadID,
		AssistantID: assistantID,
		TaskID:      taskID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.runs[run.ID] = run
	s.runsByThread[threadID] = append(s.runsByThread[threadID], run.ID)

	c := *run
	return &c, nil
}

// GetRun returns the run, or ErrRunNotFound.
func (s *Store) GetRun(runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	c := *run
	return &c, nil
}

// ListRuns returns the thread's runs in creation order.
func (s *Store) ListRuns(threadID string) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.threads[threadID]; !ok {
		return nil, ErrThreadNotFound
	}
	var out []*Run
	for _, id := range s.runsByThread[threadID] {
		c := *s.runs[id]
		out = append(out, &c)
	}
	return out, nil
}
