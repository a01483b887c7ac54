package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/Abraxas-365/mosaic/pkg/logx"
)

var terminator = []byte("\n\n")

// Decoder reconstructs events from a byte stream that may split or coalesce
// event boundaries anywhere. Bytes after the last terminator stay buffered
// until the next Feed.
type Decoder struct {
	buf     []byte
	dropped int
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk and returns every event completed by it, in order.
func (d *Decoder) Feed(chunk []byte) []Event {
	for _, b := range chunk {
		if b != '\r' {
			d.buf = append(d.buf, b)
		}
	}

	var out []Event
	for {
		i := bytes.Index(d.buf, terminator)
		if i < 0 {
			break
		}
		segment := d.buf[:i]
		if ev, ok := d.decodeSegment(segment); ok {
			out = append(out, ev)
		}
		d.buf = d.buf[i+len(terminator):]
	}
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return out
}

// Flush decodes a final segment left without a terminator at end of stream.
func (d *Decoder) Flush() []Event {
	segment := bytes.TrimRight(d.buf, "\n")
	d.buf = nil
	if len(segment) == 0 {
		return nil
	}
	if ev, ok := d.decodeSegment(segment); ok {
		return []Event{ev}
	}
	return nil
}

// Dropped counts segments discarded as malformed.
func (d *Decoder) Dropped() int {
	return d.dropped
}

type wirePayload struct {
	ThreadID *string `json:"threadId"`
	Text     *string `json:"text"`
	Message  *string `json:"message"`
	Error    *string `json:"error"`
	Action   *string `json:"action"`
	Type     *string `json:"type"`
	Name     *string `json:"name"`
}

func (d *Decoder) decodeSegment(segment []byte) (Event, bool) {
	var name string
	var data []byte
	hasData := false

	for _, line := range bytes.Split(segment, []byte("\n")) {
		if len(line) == 0 || line[0] == ':' {
			continue
		}
		field, value, _ := bytes.Cut(line, []byte(":"))
		value = bytes.TrimPrefix(value, []byte(" "))
		switch string(field) {
		case "event":
			name = string(bytes.TrimSpace(value))
		case "data":
			if hasData {
				data = append(data, '\n')
			}
			data = append(data, value...)
			hasData = true
		}
	}

	if !hasData && name == "" {
		return Event{}, false
	}

	var p wirePayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.drop(name, data, err)
		return Event{}, false
	}

	kind := Kind(name)
	if kind == "" {
		kind = inferKind(p)
	}
	ev, ok := fromPayload(kind, p)
	if !ok {
		d.drop(name, data, nil)
	}
	return ev, ok
}

func (d *Decoder) drop(name string, data []byte, err error) {
	d.dropped++
	entry := logx.WithFields(logx.Fields{
		"event": name,
		"data":  string(data),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("sse: dropping malformed event")
}

func inferKind(p wirePayload) Kind {
	switch {
	case p.ThreadID != nil:
		return KindThreadID
	case p.Text != nil:
		return KindTextDelta
	case p.Error != nil:
		return KindError
	case p.Action != nil:
		return KindAction
	case p.Type != nil:
		return KindToolCall
	case p.Message != nil:
		return KindStatus
	}
	return ""
}

func fromPayload(kind Kind, p wirePayload) (Event, bool) {
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	switch kind {
	case KindThreadID:
		return ThreadID(str(p.ThreadID)), p.ThreadID != nil
	case KindTextDelta:
		return TextDelta(str(p.Text)), p.Text != nil
	case KindStatus:
		return Status(str(p.Message)), p.Message != nil
	case KindError:
		// Older servers sent {message} instead of {error}.
		if p.Error != nil {
			return Error(*p.Error), true
		}
		return Error(str(p.Message)), p.Message != nil
	case KindAction:
		return Action(str(p.Action)), p.Action != nil
	case KindToolCall:
		return Event{Kind: KindToolCall, ToolType: str(p.Type), ToolName: str(p.Name)}, p.Type != nil || p.Name != nil
	}
	return Event{}, false
}

// Consume reads r until EOF and calls fn for each decoded event in order.
// It stops early when fn returns an error or ctx is done.
func Consume(ctx context.Context, r io.Reader, fn func(Event) error) error {
	d := NewDecoder()
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			for _, ev := range d.Feed(buf[:n]) {
				if ferr := fn(ev); ferr != nil {
					return ferr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			for _, ev := range d.Flush() {
				if ferr := fn(ev); ferr != nil {
					return ferr
				}
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}
