// Package server runs both protocol adapters behind one HTTP entry point.
//
// The router demultiplexes by path and method: the agent card and root
// JSON-RPC POST go to the A2A adapter, the assistants/threads/runs surface
// goes to the LangGraph adapter, OPTIONS requests are answered as CORS
// preflights, and everything else is a 404. Both adapters are constructed
// once over the same store and handler, so state mutated through one
// protocol is visible through the other.
package server
