// Package a2a implements the A2A (Agent-to-Agent) protocol adapter: a
// JSON-RPC 2.0 endpoint with Server-Sent Events streaming, agent-card
// discovery, and a client for calling remote A2A agents.
//
// A2A is an open protocol enabling communication and interoperability
// between AI agent systems. The adapter translates between the A2A wire
// format and the internal janus representation at the boundary only; all
// authoritative task state lives in the shared store.
//
// # Wire Format
//
// The A2A wire format discriminates message parts with a "kind" key, while
// the internal representation uses "type". The renaming is centralized in
// the EncodePart/DecodePart pair; nothing else in the codebase performs it.
// DecodeMessage additionally accepts the legacy "context_id" spelling from
// third-party producers.
//
// # Server
//
// [Handler] serves the JSON-RPC methods message/send, message/stream,
// tasks/get, tasks/list, tasks/cancel, and tasks/resubscribe, plus legacy
// aliases (tasks/send, a2a.SendMessage, SendMessage, and friends).
// Streaming methods reply with text/event-stream; every frame is a
// JSON-RPC-enveloped event whose kind is one of "task", "status-update",
// or "artifact-update". The final status-update of a stream carries
// final:true and the stream closes immediately after it.
//
// # Client
//
// [Client] performs the inverse translation for consuming remote agents:
//
//	c := a2a.NewClient("http://localhost:8080/")
//	task, err := c.SendText(ctx, "Hello")
//
// # Discovery
//
// The agent card is served raw (no JSON-RPC envelope) at
// /.well-known/agent-card.json via [Handler.ServeCard].
package a2a
