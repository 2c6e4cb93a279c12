// Package sse implements the Server-Sent Events framing shared by both
// protocol adapters: unnamed data-only frames for the A2A JSON-RPC stream
// and named-event frames for the LangGraph stream.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("sse: streaming not supported by response writer")

// Writer writes SSE frames, flushing after each one so updates reach the
// client immediately rather than on buffer boundaries.
type Writer struct {
	w http.ResponseWriter
	f http.Flusher
}

// NewWriter prepares w for an SSE response: sets the stream headers and
// verifies the writer supports flushing.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &Writer{w: w, f: f}, nil
}

// Send writes a data-only frame: "data: <json>\n\n".
func (s *Writer) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// SendEvent writes a named frame: "event: <name>\ndata: <json>\n\n".
// A nil value is written as JSON null.
func (s *Writer) SendEvent(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}
