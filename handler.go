package janus

import "context"

// TaskContext is the input to a task handler invocation: the task being
// executed and the inbound message that triggered it.
type TaskContext struct {
	Task    *Task
	Message Message
}

// Update is one incremental progress report yielded by a handler. Each
// update with a State causes exactly one store transition. An update with
// only an Artifact appends the artifact without changing state. Err marks
// a handler execution failure; the adapter translates it into a failed
// transition and stops consuming the channel.
type Update struct {
	State    TaskState
	Message  *Message
	Artifact *Artifact
	Err      error
}

// Handler is the single extension point of the bridge. All protocol entry
// points, streaming or not, funnel through one Run call per task.
//
// Run returns a channel of updates and must close it when done. The
// sequence may be empty; adapters then synthesize a failed transition so
// the task cannot get stuck. Cancelling ctx signals task cancellation:
// implementations should abort in-flight work and close the channel.
type Handler interface {
	Run(ctx context.Context, tc *TaskContext) <-chan Update
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, tc *TaskContext) <-chan Update

// Run calls f.
func (f HandlerFunc) Run(ctx context.Context, tc *TaskContext) <-chan Update {
	return f(ctx, tc)
}

// ReplyFunc is a request/response agent: one inbound message, one reply.
type ReplyFunc func(ctx context.Context, tc *TaskContext) (Message, error)

// NewReplyHandler wraps a request/response function as a Handler. The
// single returned message is framed as a working transition followed by a
// completed transition carrying the reply.
func NewReplyHandler(f ReplyFunc) Handler {
	return HandlerFunc(func(ctx context.Context, tc *TaskContext) <-chan Update {
		ch := make(chan Update, 2)
		go func() {
			defer close(ch)
			ch <- Update{State: TaskStateWorking}
			msg, err := f(ctx, tc)
			if err != nil {
				ch <- Update{Err: err}
				return
			}
			ch <- Update{State: TaskStateCompleted, Message: &msg}
		}()
		return ch
	})
}

// NewEchoHandler returns a handler that replies with the inbound text
// prefixed by prefix. Used in tests and as the no-credentials fallback of
// the reference server.
func NewEchoHandler(prefix string) Handler {
	return NewReplyHandler(func(ctx context.Context, tc *TaskContext) (Message, error) {
		return NewAgentTextMessage(prefix + tc.Message.TextContent()), nil
	})
}
