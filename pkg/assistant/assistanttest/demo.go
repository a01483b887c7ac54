package assistanttest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Demo is a keyword driven backend used when no hosted assistant is
// configured. Scheduling requests trigger book_meeting, resume requests with
// an address trigger email_resume, anything else gets a canned reply.
type Demo struct {
	mu   sync.Mutex
	last map[string]string
}

var _ assistant.Backend = (*Demo)(nil)

// NewDemo creates a demo backend.
func NewDemo() *Demo {
	return &Demo{last: map[string]string{}}
}

func (d *Demo) CreateConversation(ctx context.Context) (string, error) {
	return "thread_demo_" + uuid.NewString(), nil
}

func (d *Demo) AppendMessage(ctx context.Context, conversationID, text string) error {
	d.mu.Lock()
	d.last[conversationID] = text
	d.mu.Unlock()
	return nil
}

func (d *Demo) StreamGeneration(ctx context.Context, conversationID, assistantID string) (assistant.Stream, error) {
	d.mu.Lock()
	msg := d.last[conversationID]
	d.mu.Unlock()

	runID := "run_" + uuid.NewString()
	events := []assistant.Event{{Kind: assistant.KindRunCreated, RunID: runID}}
	lower := strings.ToLower(msg)

	switch {
	case containsAny(lower, "schedule", "meeting", "interview", "call"):
		events = append(events, words("Happy to set that up. Pick a time that works for you.")...)
		events = append(events, assistant.Event{
			Kind:      assistant.KindToolCallsRequired,
			RunID:     runID,
			ToolCalls: []assistant.ToolCall{{ID: "call_" + uuid.NewString(), Name: "book_meeting", Arguments: "{}"}},
		})
	case strings.Contains(lower, "resume") && findAddress(msg) != "":
		args, _ := json.Marshal(map[string]string{"email": findAddress(msg)})
		events = append(events, assistant.Event{
			Kind:      assistant.KindToolCallsRequired,
			RunID:     runID,
			ToolCalls: []assistant.ToolCall{{ID: "call_" + uuid.NewString(), Name: "email_resume", Arguments: string(args)}},
		})
	default:
		events = append(events, words("Thanks for reaching out! Ask me about experience, projects, or say \"send my resume to you@example.com\".")...)
		events = append(events, assistant.Event{Kind: assistant.KindRunCompleted, RunID: runID})
	}
	return NewStream(ctx, events...), nil
}

func (d *Demo) SubmitToolOutputs(ctx context.Context, conversationID, runID string, outputs []assistant.ToolOutput) (assistant.Stream, error) {
	reply := "All set. Anything else I can help with?"
	for _, o := range outputs {
		if !gjson.Get(o.Output, "success").Bool() {
			reply = "Sorry, that did not work: " + gjson.Get(o.Output, "error").String()
			break
		}
	}
	events := append(words(reply), assistant.Event{Kind: assistant.KindRunCompleted, RunID: runID})
	return NewStream(ctx, events...), nil
}

// words splits text into deltas the way a model streams tokens.
func words(text string) []assistant.Event {
	fields := strings.SplitAfter(text, " ")
	out := make([]assistant.Event, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, assistant.Event{Kind: assistant.KindTextDelta, Text: f})
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func findAddress(s string) string {
	for _, f := range strings.Fields(s) {
		f = strings.Trim(f, ".,;:!?()<>\"'")
		if strings.Count(f, "@") == 1 && !strings.HasPrefix(f, "@") && !strings.HasSuffix(f, "@") {
			return f
		}
	}
	return ""
}

// Documents is an in-memory assistant.DocumentStore.
type Documents struct {
	mu          sync.Mutex
	files       map[string][]byte
	indexes     map[string]string
	attached    map[string][]string
	ensureCalls int

	UploadErr error
}

var _ assistant.DocumentStore = (*Documents)(nil)

// NewDocuments creates an empty document store.
func NewDocuments() *Documents {
	return &Documents{
		files:    map[string][]byte{},
		indexes:  map[string]string{},
		attached: map[string][]string{},
	}
}

func (d *Documents) UploadFile(ctx context.Context, filename string, data []byte) (string, error) {
	if d.UploadErr != nil {
		return "", d.UploadErr
	}
	id := "file_" + uuid.NewString()
	d.mu.Lock()
	d.files[id] = append([]byte(nil), data...)
	d.mu.Unlock()
	return id, nil
}

func (d *Documents) EnsureIndex(ctx context.Context, assistantID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureCalls++
	if id, ok := d.indexes[assistantID]; ok {
		return id, nil
	}
	id := "vs_" + uuid.NewString()
	d.indexes[assistantID] = id
	return id, nil
}

func (d *Documents) Attach(ctx context.Context, indexID, fileID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attached[indexID] = append(d.attached[indexID], fileID)
	return nil
}

// EnsureCalls reports how many times EnsureIndex ran.
func (d *Documents) EnsureCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensureCalls
}

// Attached returns the files attached to an index.
func (d *Documents) Attached(indexID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.attached[indexID]...)
}
