package sse

import (
	"bufio"
	"io"
	"strings"
)

// Frame is one parsed SSE frame. Event is empty for data-only frames.
type Frame struct {
	Event string
	Data  []byte
}

// Reader parses SSE frames from a response body. Used by the client-side
// mirrors to perform the inverse of the server translation.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: sc}
}

// Next returns the next frame, or io.EOF when the stream ends. Comment
// lines and unknown fields are skipped per the SSE specification.
func (r *Reader) Next() (Frame, error) {
	var frame Frame
	var sawData bool

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			if sawData {
				return frame, nil
			}
			frame = Frame{}
			continue
		}
		switch {
		case strings.HasPrefix(line, "event:"):
			frame.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimPrefix(line, "data:")
			data = strings.TrimPrefix(data, " ")
			if sawData {
				frame.Data = append(frame.Data, '\n')
			}
			frame.Data = append(frame.Data, data...)
			sawData = true
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Frame{}, err
	}
	if sawData {
		return frame, nil
	}
	return Frame{}, io.EOF
}
