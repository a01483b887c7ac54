package sse

import "strings"

// Transcript folds one response's events into what a chat client shows:
// the assistant's text with status lines and error markers appended where
// they occurred.
type Transcript struct {
	ThreadID    string
	ShowBooking bool
	Statuses    []string
	Errors      []string
	Tools       []string

	text    strings.Builder
	display strings.Builder
}

// Apply updates the transcript with one event.
func (t *Transcript) Apply(ev Event) {
	switch ev.Kind {
	case KindThreadID:
		t.ThreadID = ev.ThreadID
	case KindTextDelta:
		t.text.WriteString(ev.Text)
		t.display.WriteString(ev.Text)
	case KindStatus:
		t.Statuses = append(t.Statuses, ev.Message)
		t.display.WriteString("\n\n*" + ev.Message + "*\n\n")
	case KindError:
		t.Errors = append(t.Errors, ev.Message)
		t.display.WriteString("\n\n**Error:** " + ev.Message + "\n\n")
	case KindAction:
		if ev.Action == ActionBookMeeting {
			t.ShowBooking = true
		}
	case KindToolCall:
		t.Tools = append(t.Tools, ev.ToolName)
	}
}

// Text is the concatenation of every text delta.
func (t *Transcript) Text() string {
	return t.text.String()
}

// Display is the text with status lines and error markers interleaved.
func (t *Transcript) Display() string {
	return strings.TrimSpace(t.display.String())
}
