// Package store provides the in-memory task registry at the heart of the
// dual-protocol bridge.
//
// The package offers three concerns in one Store:
//   - task lifecycle: creation, validated state transitions, message history
//   - subscriber notification: per-task observer registry with removable handles
//   - thread/run projections: the conversation-level grouping the LangGraph
//     adapter serves, derived from the same task records
//
// A Store is constructed once per server instance and shared by reference
// between both protocol adapters, so state mutated through one protocol is
// visible through the other. Multiple stores can coexist in one process.
//
// # Task Lifecycle
//
// Tasks are created in the submitted state and mutated exclusively through
// Transition, which validates every move against the state machine:
//
//	task := s.CreateTask(msg)
//	task, err := s.Transition(task.ID, janus.TaskStateWorking, nil)
//
// A transition absent from the table fails with [InvalidTransitionError]
// and leaves the task unchanged. Terminal states (completed, failed,
// canceled, rejected) permit no further transitions.
//
// # Subscriptions
//
// Subscribe registers a callback invoked on every subsequent mutation of a
// task. The returned disposer is idempotent and safe to call from within
// the callback itself:
//
//	unsub, _ := s.Subscribe(task.ID, func(ev store.Event) { ... })
//	defer unsub()
//
// # Concurrency
//
// All operations are safe for concurrent use. Mutations are serialized
// behind a single mutex, so a reader never observes a half-applied
// transition. Callbacks are invoked outside the lock, after the mutation
// has been committed, in transition order for any one task.
package store
