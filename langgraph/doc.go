// Package langgraph implements a LangGraph Platform-compatible REST/SSE
// adapter over the shared task store.
//
// The adapter speaks the assistants/threads/runs vocabulary: a thread is a
// conversation context (its id doubles as the contextId used by the A2A
// surface), a run is one handler invocation and maps 1:1 to a task, and a
// single synthetic assistant derived from the agent card is registered at
// construction time.
//
// Messages cross this surface in LangGraph shape: roles are projected
// user<->human and agent<->ai, and content collapses to the newline-joined
// text parts of the internal message. Non-text parts are dropped from the
// projection on purpose; the full message survives in the task store.
//
// Run input is normalized from any of the accepted shapes ({messages},
// {message}, {content}, {text}, or an arbitrary object) into a single
// inbound message; see NormalizeInput.
package langgraph
