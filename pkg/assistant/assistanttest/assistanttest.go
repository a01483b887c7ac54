// Package assistanttest provides in-memory assistant backends: a scripted
// Backend whose phases are fixed up front, a keyword driven Demo, and an
// in-memory DocumentStore.
package assistanttest

import (
	"context"
	"sync"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/google/uuid"
)

// Phase is one scripted generation. Err, when set, is reported by the
// stream after Events are exhausted.
type Phase struct {
	Events []assistant.Event
	Err    error
}

// Backend replays Phases in order: the first for StreamGeneration, the
// rest for each SubmitToolOutputs. Once they run out every phase completes
// immediately.
type Backend struct {
	Phases []Phase

	CreateErr error
	AppendErr error
	StreamErr error

	mu        sync.Mutex
	next      int
	created   []string
	messages  map[string][]string
	submitted [][]assistant.ToolOutput
	runs      []string
}

var _ assistant.Backend = (*Backend)(nil)

// NewBackend creates a scripted backend.
func NewBackend(phases ...Phase) *Backend {
	return &Backend{Phases: phases, messages: map[string][]string{}}
}

func (b *Backend) CreateConversation(ctx context.Context) (string, error) {
	if b.CreateErr != nil {
		return "", b.CreateErr
	}
	id := "thread_" + uuid.NewString()
	b.mu.Lock()
	b.created = append(b.created, id)
	b.mu.Unlock()
	return id, nil
}

func (b *Backend) AppendMessage(ctx context.Context, conversationID, text string) error {
	if b.AppendErr != nil {
		return b.AppendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.messages == nil {
		b.messages = map[string][]string{}
	}
	b.messages[conversationID] = append(b.messages[conversationID], text)
	return nil
}

func (b *Backend) StreamGeneration(ctx context.Context, conversationID, assistantID string) (assistant.Stream, error) {
	if b.StreamErr != nil {
		return nil, b.StreamErr
	}
	return b.nextPhase(ctx), nil
}

func (b *Backend) SubmitToolOutputs(ctx context.Context, conversationID, runID string, outputs []assistant.ToolOutput) (assistant.Stream, error) {
	b.mu.Lock()
	b.submitted = append(b.submitted, append([]assistant.ToolOutput(nil), outputs...))
	b.runs = append(b.runs, runID)
	b.mu.Unlock()
	return b.nextPhase(ctx), nil
}

func (b *Backend) nextPhase(ctx context.Context) assistant.Stream {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.next >= len(b.Phases) {
		return NewStream(ctx, assistant.Event{Kind: assistant.KindRunCompleted})
	}
	p := b.Phases[b.next]
	b.next++
	s := NewStream(ctx, p.Events...)
	s.err = p.Err
	return s
}

// Created returns the conversation ids created so far.
func (b *Backend) Created() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.created...)
}

// Messages returns the user messages appended to a conversation.
func (b *Backend) Messages(conversationID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages[conversationID]...)
}

// Submitted returns every batch of tool outputs, in submission order.
func (b *Backend) Submitted() [][]assistant.ToolOutput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]assistant.ToolOutput(nil), b.submitted...)
}

// SubmittedRuns returns the run id each batch was submitted against.
func (b *Backend) SubmittedRuns() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.runs...)
}

// Stream is an assistant.Stream over a fixed slice of events.
type Stream struct {
	ctx    context.Context
	events []assistant.Event
	pos    int
	err    error
	closed bool
}

// NewStream creates a stream yielding events. Iteration stops with the
// context's error once ctx is done.
func NewStream(ctx context.Context, events ...assistant.Event) *Stream {
	return &Stream{ctx: ctx, events: events, pos: -1}
}

// Failing creates a stream that yields events and then reports err.
func Failing(ctx context.Context, err error, events ...assistant.Event) *Stream {
	s := NewStream(ctx, events...)
	s.err = err
	return s
}

func (s *Stream) Next() bool {
	if s.closed {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.pos+1 >= len(s.events) {
		s.pos = len(s.events)
		return false
	}
	s.pos++
	return true
}

func (s *Stream) Current() assistant.Event {
	if s.pos < 0 || s.pos >= len(s.events) {
		return assistant.Event{}
	}
	return s.events[s.pos]
}

func (s *Stream) Err() error {
	if s.pos < len(s.events) && s.ctx.Err() == nil {
		return nil
	}
	return s.err
}

func (s *Stream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	return s.closed
}
