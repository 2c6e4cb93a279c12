package store

import (
	"errors"
	"fmt"

	"github.com/spetersoncode/janus"
)

var (
	// ErrTaskNotFound indicates the requested task id does not exist.
	ErrTaskNotFound = errors.New("store: task not found")

	// ErrThreadNotFound indicates the requested thread id does not exist.
	ErrThreadNotFound = errors.New("store: thread not found")

	// ErrRunNotFound indicates the requested run id does not exist.
	ErrRunNotFound = errors.New("store: run not found")
)

// InvalidTransitionError reports a state change not permitted by the task
// state machine. The stored task is left unchanged.
type InvalidTransitionError struct {
	TaskID string
	From   janus.TaskState
	To     janus.TaskState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("store: invalid transition %s -> %s for task %s", e.From, e.To, e.TaskID)
}
