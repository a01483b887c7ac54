// Package sse implements the chat event stream: the outbound event
// vocabulary, its text/event-stream encoding, a single-writer emitter, and
// an incremental decoder for clients.
package sse

import (
	"encoding/json"
)

// Kind is the SSE event name.
type Kind string

const (
	KindThreadID  Kind = "threadId"
	KindTextDelta Kind = "textDelta"
	KindStatus    Kind = "status"
	KindError     Kind = "error"
	KindAction    Kind = "action"
	KindToolCall  Kind = "toolCall"
)

// ActionBookMeeting asks the client to show the scheduling widget.
const ActionBookMeeting = "book_meeting"

// Event is one outbound event. Only the fields of its Kind are meaningful.
type Event struct {
	Kind     Kind
	ThreadID string
	Text     string
	Message  string // status and error text
	Action   string
	ToolType string
	ToolName string
}

func ThreadID(id string) Event    { return Event{Kind: KindThreadID, ThreadID: id} }
func TextDelta(text string) Event { return Event{Kind: KindTextDelta, Text: text} }
func Status(message string) Event { return Event{Kind: KindStatus, Message: message} }
func Error(message string) Event  { return Event{Kind: KindError, Message: message} }
func Action(action string) Event  { return Event{Kind: KindAction, Action: action} }

// ToolCall announces a function invocation by name.
func ToolCall(name string) Event {
	return Event{Kind: KindToolCall, ToolType: "function", ToolName: name}
}

func (e Event) String() string {
	b, err := json.Marshal(e.payload())
	if err != nil {
		return string(e.Kind)
	}
	return string(e.Kind) + string(b)
}

type (
	threadIDPayload struct {
		ThreadID string `json:"threadId"`
	}
	textPayload struct {
		Text string `json:"text"`
	}
	statusPayload struct {
		Message string `json:"message"`
	}
	errorPayload struct {
		Error string `json:"error"`
	}
	actionPayload struct {
		Action string `json:"action"`
	}
	toolCallPayload struct {
		Type string `json:"type"`
		Name string `json:"name,omitempty"`
	}
)

// payload returns the JSON shape of the event's data line. Errors always
// use the "error" key.
func (e Event) payload() any {
	switch e.Kind {
	case KindThreadID:
		return threadIDPayload{e.ThreadID}
	case KindTextDelta:
		return textPayload{e.Text}
	case KindStatus:
		return statusPayload{e.Message}
	case KindError:
		return errorPayload{e.Message}
	case KindAction:
		return actionPayload{e.Action}
	case KindToolCall:
		return toolCallPayload{Type: e.ToolType, Name: e.ToolName}
	}
	return nil
}

// Encode renders ev as "event: <name>\ndata: <json>\n\n".
func Encode(ev Event) ([]byte, error) {
	p := ev.payload()
	if p == nil {
		return nil, ErrUnknownKind(ev.Kind)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(ev.Kind)+len(data)+16)
	out = append(out, "event: "...)
	out = append(out, ev.Kind...)
	out = append(out, "\ndata: "...)
	out = append(out, data...)
	out = append(out, "\n\n"...)
	return out, nil
}
