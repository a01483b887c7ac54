package chat

import (
	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/Abraxas-365/mosaic/pkg/sse"
)

// Translate maps one upstream event to at most one outbound event.
// Run lifecycle events and tool call batches produce nothing here: the
// relay tracks the former and routes the latter to the Toolbox.
func Translate(ev assistant.Event) (sse.Event, bool) {
	switch ev.Kind {
	case assistant.KindTextDelta:
		if ev.Text == "" {
			return sse.Event{}, false
		}
		return sse.TextDelta(ev.Text), true
	case assistant.KindRunFailed:
		reason := ev.Reason
		if reason == "" {
			reason = "Run failed"
		}
		return sse.Error(reason), true
	}
	return sse.Event{}, false
}
