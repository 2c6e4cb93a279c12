// Package run drives a single handler invocation for a task, applying
// every yielded update to the store. All protocol entry points, streaming
// or not, funnel through Drive — one handler invocation per task.
package run

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/store"
)

// Drive invokes h exactly once for the task and drains its update channel
// into sequential store transitions. On return the task is guaranteed to
// be in a terminal state:
//
//   - a handler error becomes a failed transition carrying the error text
//     as a synthesized agent message and an advisory retryable hint
//   - an empty or non-terminal update sequence is closed out with a
//     generic failed transition so the task cannot get stuck
//   - updates arriving after the task went terminal (e.g. a cancel raced
//     the handler) are discarded
//
// The context handed to the handler is cancelled when the task is
// cancelled through either protocol, aborting in-flight generation.
//
// The returned error is non-nil only when the handler yielded a state the
// transition table rejects on a live task; the caller surfaces it as an
// invalid-params protocol error. Even then the task is closed out as
// failed before returning.
func Drive(ctx context.Context, s *store.Store, h janus.Handler, task *janus.Task, msg janus.Message) (*janus.Task, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.BindCancel(task.ID, cancel)

	updates := h.Run(ctx, &janus.TaskContext{Task: task, Message: msg})

	var yieldErr error
	for update := range updates {
		if update.Err != nil {
			failTask(s, task.ID, update.Err)
			break
		}

		if update.Artifact != nil {
			if _, err := s.AddArtifact(task.ID, *update.Artifact); err != nil {
				if terminal(s, task.ID) {
					break
				}
				slog.Warn("dropping artifact update", "task_id", task.ID, "error", err)
			}
		}

		if update.State == "" {
			continue
		}
		if _, err := s.Transition(task.ID, update.State, update.Message); err != nil {
			if terminal(s, task.ID) {
				// Task was cancelled out from under the handler; stop
				// forwarding, the remaining yields are discarded.
				break
			}
			var ite *store.InvalidTransitionError
			if errors.As(err, &ite) {
				yieldErr = err
				failTask(s, task.ID, err)
				break
			}
			yieldErr = err
			break
		}
	}
	cancel()

	final, err := s.Get(task.ID)
	if err != nil {
		return nil, err
	}
	if !final.State.IsTerminal() {
		// The handler finished without reaching a terminal state; it has
		// not indicated success, so the task is closed out as failed.
		failMsg := janus.NewAgentTextMessage("handler finished without reaching a terminal state")
		if closed := closeOut(s, task.ID, &janus.TaskError{
			Code:    -32603,
			Message: "handler yielded no terminal update",
			Data:    map[string]any{"retryable": false},
		}, &failMsg); closed != nil {
			final = closed
		}
	}
	return final, yieldErr
}

// failTask closes the task out with the error's message and an advisory
// retryable hint. A no-op if the task already went terminal.
func failTask(s *store.Store, taskID string, cause error) {
	msg := janus.NewAgentTextMessage(cause.Error())
	closeOut(s, taskID, &janus.TaskError{
		Code:    -32603,
		Message: cause.Error(),
		Data:    map[string]any{"retryable": janus.IsRetryable(cause)},
	}, &msg)
}

// closeOut transitions the task to failed, falling back to rejected for
// tasks that never left submitted (the table has no submitted -> failed
// edge). Returns nil if the task already went terminal.
func closeOut(s *store.Store, taskID string, terr *janus.TaskError, msg *janus.Message) *janus.Task {
	closed, err := s.Fail(taskID, terr, msg)
	if err == nil {
		return closed
	}
	var ite *store.InvalidTransitionError
	if errors.As(err, &ite) && ite.From == janus.TaskStateSubmitted {
		if closed, err = s.Reject(taskID, terr, msg); err == nil {
			return closed
		}
	}
	if !terminal(s, taskID) {
		slog.Error("failed to close out task", "task_id", taskID, "error", err)
	}
	return nil
}

func terminal(s *store.Store, taskID string) bool {
	t, err := s.Get(taskID)
	return err == nil && t.State.IsTerminal()
}
