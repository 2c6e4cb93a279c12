package langgraph

import (
	"encoding/json"

	"github.com/spetersoncode/janus"
)

// inputMessage is one element of an input "messages" array. Both the
// LangGraph "type" and the plainer "role" spelling are accepted; content
// may be a string or any JSON value (stringified as fallback).
type inputMessage struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

func (m inputMessage) role() janus.Role {
	if m.Type != "" {
		return InternalRole(m.Type)
	}
	return InternalRole(m.Role)
}

// NormalizeInput converts a raw run input into the single inbound message
// that drives the handler. Accepted shapes, tried in order:
//
//	{messages: [...]}   take the last element
//	{message: string}
//	{content: string}
//	{text: string}
//
// Anything else that parses as JSON is stringified into a user text
// message, so a syntactically valid body is never rejected.
func NormalizeInput(raw json.RawMessage) janus.Message {
	if len(raw) == 0 {
		return janus.NewUserTextMessage("")
	}

	var probe struct {
		Messages []json.RawMessage `json:"messages"`
		Message  json.RawMessage   `json:"message"`
		Content  json.RawMessage   `json:"content"`
		Text     json.RawMessage   `json:"text"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		// Not an object; the body as a whole becomes the text.
		return stringified(raw)
	}

	if len(probe.Messages) > 0 {
		last := probe.Messages[len(probe.Messages)-1]
		var im inputMessage
		if err := json.Unmarshal(last, &im); err == nil {
			return janus.NewMessage(im.role(), janus.NewTextPart(rawText(im.Content)))
		}
		return stringified(last)
	}
	if s, ok := asString(probe.Message); ok {
		return janus.NewUserTextMessage(s)
	}
	if s, ok := asString(probe.Content); ok {
		return janus.NewUserTextMessage(s)
	}
	if s, ok := asString(probe.Text); ok {
		return janus.NewUserTextMessage(s)
	}

	return stringified(raw)
}

// rawText extracts a string content value, stringifying non-string JSON.
func rawText(raw json.RawMessage) string {
	if s, ok := asString(raw); ok {
		return s
	}
	if len(raw) == 0 {
		return ""
	}
	return string(raw)
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func stringified(raw json.RawMessage) janus.Message {
	return janus.NewUserTextMessage(string(raw))
}
