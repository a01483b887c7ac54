package assistantopenai

import (
	"strings"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/tidwall/gjson"
)

// runStream maps Assistants v2 run events onto assistant.Event. Events that
// carry nothing the relay needs (message created, run steps, queued) are
// skipped.
type runStream struct {
	decoder ssestream.Decoder
	current assistant.Event
	err     error
	done    bool
}

func newRunStream(decoder ssestream.Decoder) *runStream {
	return &runStream{decoder: decoder}
}

func (s *runStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	for s.decoder.Next() {
		raw := s.decoder.Event()
		if raw.Type == "done" {
			s.done = true
			return false
		}
		ev, ok := mapEvent(raw.Type, raw.Data)
		if !ok {
			continue
		}
		s.current = ev
		return true
	}
	if err := s.decoder.Err(); err != nil {
		s.err = WrapError(err, ErrStreamFailed)
	}
	s.done = true
	return false
}

func (s *runStream) Current() assistant.Event {
	return s.current
}

func (s *runStream) Err() error {
	return s.err
}

func (s *runStream) Close() error {
	return s.decoder.Close()
}

func mapEvent(eventType string, data []byte) (assistant.Event, bool) {
	switch eventType {
	case "thread.run.created":
		return assistant.Event{Kind: assistant.KindRunCreated, RunID: gjson.GetBytes(data, "id").String()}, true

	case "thread.message.delta":
		var text strings.Builder
		gjson.GetBytes(data, "delta.content").ForEach(func(_, part gjson.Result) bool {
			if part.Get("type").String() == "text" {
				text.WriteString(part.Get("text.value").String())
			}
			return true
		})
		return assistant.Event{Kind: assistant.KindTextDelta, Text: text.String()}, true

	case "thread.run.requires_action":
		ev := assistant.Event{Kind: assistant.KindToolCallsRequired, RunID: gjson.GetBytes(data, "id").String()}
		gjson.GetBytes(data, "required_action.submit_tool_outputs.tool_calls").ForEach(func(_, tc gjson.Result) bool {
			ev.ToolCalls = append(ev.ToolCalls, assistant.ToolCall{
				ID:        tc.Get("id").String(),
				Name:      tc.Get("function.name").String(),
				Arguments: tc.Get("function.arguments").String(),
			})
			return true
		})
		return ev, true

	case "thread.run.completed":
		return assistant.Event{Kind: assistant.KindRunCompleted, RunID: gjson.GetBytes(data, "id").String()}, true

	case "thread.run.failed":
		return failed(data, "last_error.message", "Run failed"), true
	case "thread.run.expired":
		return failed(data, "", "Run expired"), true
	case "thread.run.cancelled":
		return failed(data, "", "Run cancelled"), true
	case "thread.run.incomplete":
		return failed(data, "incomplete_details.reason", "Run incomplete"), true

	case "error":
		reason := gjson.GetBytes(data, "error.message").String()
		if reason == "" {
			reason = gjson.GetBytes(data, "message").String()
		}
		if reason == "" {
			reason = "Stream error"
		}
		return assistant.Event{Kind: assistant.KindRunFailed, Reason: reason}, true
	}

	if !strings.HasPrefix(eventType, "thread.") {
		logx.Debugf("assistantopenai: ignoring event %q", eventType)
	}
	return assistant.Event{}, false
}

func failed(data []byte, path, fallback string) assistant.Event {
	reason := fallback
	if path != "" {
		if r := gjson.GetBytes(data, path).String(); r != "" {
			reason = r
		}
	}
	return assistant.Event{Kind: assistant.KindRunFailed, RunID: gjson.GetBytes(data, "id").String(), Reason: reason}
}
