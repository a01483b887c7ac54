package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/Abraxas-365/mosaic/pkg/asyncx"
	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/Abraxas-365/mosaic/pkg/metricx"
	"github.com/Abraxas-365/mosaic/pkg/notifx"
	"github.com/Abraxas-365/mosaic/pkg/sse"
)

// Result is the JSON document submitted back to the assistant for one tool call.
type Result struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failure builds an unsuccessful Result.
func Failure(reason string) Result {
	return Result{Success: false, Error: reason}
}

// Tool is a side-effecting capability the assistant can invoke. Execute
// reports failure through the Result; emit carries progress to the client.
type Tool interface {
	Name() string
	Execute(ctx context.Context, call assistant.ToolCall, emit sse.Emitter) Result
}

// Toolbox dispatches tool call batches by name.
type Toolbox struct {
	tools map[string]Tool
}

// NewToolbox creates a toolbox holding tools.
func NewToolbox(tools ...Tool) *Toolbox {
	b := &Toolbox{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		b.tools[t.Name()] = t
	}
	return b
}

// Run announces every call, executes the batch concurrently and returns one
// output per call in invocation order. A failing or unknown tool yields a
// failure output and never affects its siblings.
func (b *Toolbox) Run(ctx context.Context, calls []assistant.ToolCall, emit sse.Emitter) []assistant.ToolOutput {
	for _, call := range calls {
		_ = emit.Emit(sse.ToolCall(call.Name))
	}

	results := asyncx.MapSettled(ctx, calls, func(ctx context.Context, call assistant.ToolCall) (Result, error) {
		return b.execute(ctx, call, emit), nil
	})

	outputs := make([]assistant.ToolOutput, len(calls))
	for i, r := range results {
		res := r.Value
		if !r.OK() {
			logx.WithContext(ctx).WithError(r.Err).WithField("tool", calls[i].Name).Error("Tool crashed")
			res = Failure("tool failed unexpectedly")
			_ = emit.Emit(sse.Error(b.failureMessage(calls[i].Name, res.Error)))
		}
		payload, err := json.Marshal(res)
		if err != nil {
			payload = []byte(`{"success":false}`)
		}
		outputs[i] = assistant.ToolOutput{ToolCallID: calls[i].ID, Output: string(payload)}
	}
	return outputs
}

// failureReporter is implemented by tools that phrase their own client
// facing error.
type failureReporter interface {
	FailureMessage(reason string) string
}

func (b *Toolbox) failureMessage(name, reason string) string {
	if r, ok := b.tools[name].(failureReporter); ok {
		return r.FailureMessage(reason)
	}
	return name + " failed: " + reason
}

func (b *Toolbox) execute(ctx context.Context, call assistant.ToolCall, emit sse.Emitter) Result {
	tool, ok := b.tools[call.Name]
	if !ok {
		logx.WithContext(ctx).WithField("tool", call.Name).Warn("Unknown tool requested")
		metricx.RecordTool("unknown", false, 0)
		return Failure("unknown tool: " + call.Name)
	}

	start := time.Now()
	res := tool.Execute(ctx, call, emit)
	metricx.RecordTool(call.Name, res.Success, time.Since(start))

	logx.WithContext(ctx).WithFields(logx.Fields{
		"tool":    call.Name,
		"call_id": call.ID,
		"success": res.Success,
	}).Info("🔧 Tool executed")
	return res
}

// BookMeeting asks the client to display the scheduling widget.
type BookMeeting struct{}

func (BookMeeting) Name() string { return "book_meeting" }

func (BookMeeting) Execute(_ context.Context, _ assistant.ToolCall, emit sse.Emitter) Result {
	_ = emit.Emit(sse.Action(sse.ActionBookMeeting))
	return Result{Success: true, Status: "widget_displayed"}
}

// ResumeSender delivers the resume to an address.
type ResumeSender interface {
	SendResume(ctx context.Context, to string) error
}

// EmailResume emails the resume to the address in the call's arguments.
type EmailResume struct {
	sender ResumeSender
}

// NewEmailResume creates the email_resume tool.
func NewEmailResume(sender ResumeSender) *EmailResume {
	return &EmailResume{sender: sender}
}

func (t *EmailResume) Name() string { return "email_resume" }

func (t *EmailResume) Execute(ctx context.Context, call assistant.ToolCall, emit sse.Emitter) Result {
	to, err := parseEmailArgs(call.Arguments)
	if err != nil {
		reason := errx.Reason(err)
		_ = emit.Emit(sse.Error(t.FailureMessage(reason)))
		return Failure(reason)
	}

	_ = emit.Emit(sse.Status("Sending resume to " + to + "..."))
	if err := t.sender.SendResume(ctx, to); err != nil {
		reason := errx.Reason(err)
		logx.WithContext(ctx).WithError(err).WithField("to", to).Warn("Resume email failed")
		_ = emit.Emit(sse.Error(t.FailureMessage(reason)))
		return Failure(reason)
	}

	_ = emit.Emit(sse.Status("Resume sent!"))
	return Result{Success: true, Message: "Resume sent to " + to}
}

// FailureMessage is the error shown to the client when sending fails.
func (t *EmailResume) FailureMessage(reason string) string {
	return "Failed to send email: " + reason
}

func parseEmailArgs(raw string) (string, error) {
	var args struct {
		Email *string `json:"email"`
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return "", chatErrors.NewWithMessage(ErrInvalidArguments, "malformed arguments")
	}
	if args.Email == nil || *args.Email == "" {
		return "", chatErrors.NewWithMessage(ErrInvalidArguments, "email argument is required")
	}
	return notifx.ParseAddress(*args.Email)
}
