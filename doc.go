// Package janus provides a dual-protocol bridge that exposes a single agent
// implementation over both the A2A (Agent-to-Agent) JSON-RPC protocol and a
// LangGraph Platform-compatible REST API, on one shared port.
//
// The core of the library is the task lifecycle engine: every inbound
// request, regardless of protocol, is normalized into a [Message], tracked
// as a task in the store package, and executed through a single
// user-supplied [Handler]. Protocol adapters translate at the boundary only;
// they hold no state of their own.
//
// # Components
//
//   - root package: the internal data model ([Message], [Part], [TaskState],
//     [Task]) and the handler contract ([Handler], [Update], [TaskContext])
//   - [github.com/spetersoncode/janus/store]: in-memory task registry with
//     validated state transitions and subscriber notification
//   - [github.com/spetersoncode/janus/a2a]: A2A JSON-RPC/SSE adapter and client
//   - [github.com/spetersoncode/janus/langgraph]: LangGraph REST/SSE adapter
//     and client
//   - [github.com/spetersoncode/janus/server]: dual router dispatching both
//     protocols from one HTTP entry point
//
// # Basic Usage
//
// Implement a handler and serve it over both protocols:
//
//	handler := janus.NewReplyHandler(func(ctx context.Context, tc *janus.TaskContext) (janus.Message, error) {
//	    reply := "Echo: " + tc.Message.TextContent()
//	    return janus.NewAgentMessage(janus.NewTextPart(reply)), nil
//	})
//
//	srv := server.New(server.Config{Addr: ":8080"}, card, handler)
//	log.Fatal(srv.Start())
//
// The same agent is then reachable through A2A (POST / with a JSON-RPC
// message/send envelope) and through LangGraph (POST /threads, POST
// /threads/{id}/runs/wait, and friends).
//
// # Handler Contract
//
// A [Handler] consumes a [TaskContext] and produces a channel of [Update]
// values, each of which becomes exactly one task state transition. The
// channel must be closed when the handler is done. Cancellation is delivered
// through the context: cancelling a task (via either protocol) cancels the
// context passed to Run, which aborts any in-flight generation call.
//
// For request/response style agents that produce a single reply, use
// [NewReplyHandler]. To back a handler with an external text-generation
// service, implement [Generator] and use [NewGeneratorHandler].
package janus
