// Package assistant defines the vocabulary spoken by a hosted assistant
// backend: server-held conversations, generation runs that stream events,
// and tool invocations that pause a run until their outputs are submitted.
package assistant

import "context"

// Kind identifies the variant carried by an Event.
type Kind string

const (
	KindRunCreated        Kind = "run_created"
	KindTextDelta         Kind = "text_delta"
	KindToolCallsRequired Kind = "tool_calls_required"
	KindRunCompleted      Kind = "run_completed"
	KindRunFailed         Kind = "run_failed"
)

// Event is one unit of progress from a generation run.
type Event struct {
	Kind Kind

	// RunID is set on run lifecycle events and on tool call batches.
	RunID string

	// Text is the fragment carried by a text delta.
	Text string

	// ToolCalls is the batch of invocations the run is waiting on.
	ToolCalls []ToolCall

	// Reason explains a failed run.
	Reason string
}

// ToolCall is a single invocation requested by the assistant.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput answers one ToolCall. Output is a JSON document.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Stream is a lazy sequence of events from one generation phase.
//
//	for s.Next() {
//	    ev := s.Current()
//	}
//	if err := s.Err(); err != nil { ... }
type Stream interface {
	Next() bool
	Current() Event
	Err() error
	Close() error
}

// Backend is the assistant service holding conversations and running generations.
type Backend interface {
	// CreateConversation starts an empty conversation and returns its identifier.
	CreateConversation(ctx context.Context) (string, error)

	// AppendMessage adds a user message to the conversation.
	AppendMessage(ctx context.Context, conversationID, text string) error

	// StreamGeneration starts a run of assistantID over the conversation.
	StreamGeneration(ctx context.Context, conversationID, assistantID string) (Stream, error)

	// SubmitToolOutputs answers a paused run and streams its continuation.
	SubmitToolOutputs(ctx context.Context, conversationID, runID string, outputs []ToolOutput) (Stream, error)
}

// DocumentStore manages the files an assistant searches.
type DocumentStore interface {
	// UploadFile stores a document and returns its identifier.
	UploadFile(ctx context.Context, filename string, data []byte) (string, error)

	// EnsureIndex returns the knowledge index attached to assistantID,
	// creating and attaching one when none exists.
	EnsureIndex(ctx context.Context, assistantID string) (string, error)

	// Attach adds an uploaded file to an index.
	Attach(ctx context.Context, indexID, fileID string) error
}
