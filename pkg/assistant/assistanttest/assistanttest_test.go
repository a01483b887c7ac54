package assistanttest

import (
	"context"
	"errors"
	"testing"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s assistant.Stream) ([]assistant.Event, error) {
	t.Helper()
	var out []assistant.Event
	for s.Next() {
		out = append(out, s.Current())
	}
	return out, s.Err()
}

func TestStream_FailsAfterEvents(t *testing.T) {
	s := Failing(context.Background(), errors.New("connection reset"),
		assistant.Event{Kind: assistant.KindTextDelta, Text: "a"})
	events, err := drain(t, s)
	assert.Len(t, events, 1)
	assert.EqualError(t, err, "connection reset")
}

func TestStream_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(ctx, assistant.Event{Kind: assistant.KindTextDelta}, assistant.Event{Kind: assistant.KindRunCompleted})
	require.True(t, s.Next())
	cancel()
	assert.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), context.Canceled)
}

func TestBackend_ReplaysPhases(t *testing.T) {
	b := NewBackend(
		Phase{Events: []assistant.Event{{Kind: assistant.KindToolCallsRequired, RunID: "run_1"}}},
		Phase{Events: []assistant.Event{{Kind: assistant.KindRunCompleted, RunID: "run_1"}}},
	)
	ctx := context.Background()

	id, err := b.CreateConversation(ctx)
	require.NoError(t, err)
	require.NoError(t, b.AppendMessage(ctx, id, "hi"))
	assert.Equal(t, []string{"hi"}, b.Messages(id))

	s, err := b.StreamGeneration(ctx, id, "asst")
	require.NoError(t, err)
	events, err := drain(t, s)
	require.NoError(t, err)
	assert.Equal(t, assistant.KindToolCallsRequired, events[0].Kind)

	s, err = b.SubmitToolOutputs(ctx, id, "run_1", []assistant.ToolOutput{{ToolCallID: "c", Output: "{}"}})
	require.NoError(t, err)
	events, err = drain(t, s)
	require.NoError(t, err)
	assert.Equal(t, assistant.KindRunCompleted, events[0].Kind)
	assert.Equal(t, []string{"run_1"}, b.SubmittedRuns())
	assert.Len(t, b.Submitted(), 1)
}

func TestDemo_Scheduling(t *testing.T) {
	d := NewDemo()
	ctx := context.Background()
	id, _ := d.CreateConversation(ctx)
	require.NoError(t, d.AppendMessage(ctx, id, "I'd like to schedule an interview"))

	s, err := d.StreamGeneration(ctx, id, "asst")
	require.NoError(t, err)
	events, err := drain(t, s)
	require.NoError(t, err)

	last := events[len(events)-1]
	require.Equal(t, assistant.KindToolCallsRequired, last.Kind)
	assert.Equal(t, "book_meeting", last.ToolCalls[0].Name)
}

func TestDemo_Resume(t *testing.T) {
	d := NewDemo()
	ctx := context.Background()
	require.NoError(t, d.AppendMessage(ctx, "t", "Send my resume to a@b.com."))

	s, _ := d.StreamGeneration(ctx, "t", "asst")
	events, _ := drain(t, s)
	last := events[len(events)-1]
	require.Equal(t, assistant.KindToolCallsRequired, last.Kind)
	assert.Equal(t, "email_resume", last.ToolCalls[0].Name)
	assert.JSONEq(t, `{"email":"a@b.com"}`, last.ToolCalls[0].Arguments)

	s, _ = d.SubmitToolOutputs(ctx, "t", last.RunID, []assistant.ToolOutput{
		{ToolCallID: last.ToolCalls[0].ID, Output: `{"success":false,"error":"SMTP timeout"}`},
	})
	events, _ = drain(t, s)
	var text string
	for _, ev := range events {
		text += ev.Text
	}
	assert.Contains(t, text, "SMTP timeout")
}

func TestDocuments(t *testing.T) {
	d := NewDocuments()
	ctx := context.Background()
	fileID, err := d.UploadFile(ctx, "a.md", []byte("x"))
	require.NoError(t, err)
	idx1, _ := d.EnsureIndex(ctx, "asst")
	idx2, _ := d.EnsureIndex(ctx, "asst")
	assert.Equal(t, idx1, idx2)
	require.NoError(t, d.Attach(ctx, idx1, fileID))
	assert.Equal(t, []string{fileID}, d.Attached(idx1))
	assert.Equal(t, 2, d.EnsureCalls())
}
