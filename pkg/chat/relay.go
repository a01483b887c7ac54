package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/Abraxas-365/mosaic/pkg/metricx"
	"github.com/Abraxas-365/mosaic/pkg/sse"
)

// Request is one user turn.
type Request struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId"`
}

// RelayConfig configures a Relay
type RelayConfig struct {
	AssistantID string

	// MaxToolRounds bounds how many tool batches one request may answer.
	MaxToolRounds int
}

// Relay drives the generation phases of one chat request and re-emits
// their events to the client in order.
type Relay struct {
	backend assistant.Backend
	tools   *Toolbox
	cfg     RelayConfig
}

// NewRelay creates a relay over backend.
func NewRelay(backend assistant.Backend, tools *Toolbox, cfg RelayConfig) *Relay {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 2
	}
	return &Relay{backend: backend, tools: tools, cfg: cfg}
}

type phaseEnd int

const (
	phaseCompleted phaseEnd = iota
	phaseFailed
	phaseToolCalls
)

type phaseResult struct {
	end   phaseEnd
	runID string
	calls []assistant.ToolCall
}

// Stream runs the turn and writes events to emit until the assistant
// completes, fails, or the client goes away. The thread id is always the
// first event. Every failure after that point is reported in-band as a
// single error event; the returned error is for logging only.
func (r *Relay) Stream(ctx context.Context, req Request, emit sse.Emitter) error {
	ms := metricx.StartStream()
	out := &guard{emit: emit}
	log := logx.WithContext(ctx)

	outcome, err := r.run(ctx, req, out)
	ms.End(outcome)

	switch outcome {
	case metricx.OutcomeCompleted, metricx.OutcomeToolBatchEmpty:
		log.WithField("outcome", outcome).Debug("Chat stream closed")
	case metricx.OutcomeClientGone:
		log.WithError(err).Info("Client disconnected, abandoning stream")
	default:
		log.WithError(err).Warn("Chat stream failed")
	}
	return err
}

func (r *Relay) run(ctx context.Context, req Request, out *guard) (string, error) {
	threadID := req.ThreadID
	if threadID == "" {
		id, err := r.backend.CreateConversation(ctx)
		if err != nil {
			return r.fail(ctx, out, err)
		}
		threadID = id
	}
	if err := out.Emit(sse.ThreadID(threadID)); err != nil {
		return metricx.OutcomeClientGone, err
	}

	if err := r.backend.AppendMessage(ctx, threadID, req.Message); err != nil {
		return r.fail(ctx, out, err)
	}

	stream, err := r.backend.StreamGeneration(ctx, threadID, r.cfg.AssistantID)
	if err != nil {
		return r.fail(ctx, out, err)
	}
	metricx.RecordPhase("initial")

	for round := 0; ; round++ {
		res, err := r.drain(stream, out)
		stream.Close()
		if err != nil {
			if out.Err() != nil {
				return metricx.OutcomeClientGone, out.Err()
			}
			return r.fail(ctx, out, err)
		}

		switch res.end {
		case phaseCompleted:
			return metricx.OutcomeCompleted, nil
		case phaseFailed:
			return metricx.OutcomeFailed, chatErrors.New(ErrGenerationFailed)
		}

		if len(res.calls) == 0 {
			return metricx.OutcomeToolBatchEmpty, nil
		}
		if round >= r.cfg.MaxToolRounds {
			return r.fail(ctx, out, chatErrors.New(ErrTooManyRounds).WithDetail("rounds", round))
		}

		outputs := r.tools.Run(ctx, res.calls, out)
		if err := out.Err(); err != nil {
			return metricx.OutcomeClientGone, err
		}

		stream, err = r.backend.SubmitToolOutputs(ctx, threadID, res.runID, outputs)
		if err != nil {
			return r.fail(ctx, out, err)
		}
		metricx.RecordPhase("tool_outputs")
	}
}

// drain consumes one phase. It returns at the first terminal event; a
// stream that ends without one counts as completed.
func (r *Relay) drain(stream assistant.Stream, out *guard) (phaseResult, error) {
	var runID string
	for stream.Next() {
		ev := stream.Current()
		switch ev.Kind {
		case assistant.KindRunCreated:
			runID = ev.RunID
			continue
		case assistant.KindToolCallsRequired:
			if ev.RunID == "" {
				ev.RunID = runID
			}
			return phaseResult{end: phaseToolCalls, runID: ev.RunID, calls: ev.ToolCalls}, nil
		case assistant.KindRunCompleted:
			return phaseResult{end: phaseCompleted}, nil
		}

		if o, ok := Translate(ev); ok {
			if err := out.Emit(o); err != nil {
				return phaseResult{}, err
			}
		}
		if ev.Kind == assistant.KindRunFailed {
			return phaseResult{end: phaseFailed}, nil
		}
	}
	if err := stream.Err(); err != nil {
		return phaseResult{}, err
	}
	return phaseResult{end: phaseCompleted}, nil
}

// fail reports err to the client as the stream's one error event.
func (r *Relay) fail(ctx context.Context, out *guard, err error) (string, error) {
	msg := errx.Reason(err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = chatErrors.NewWithCause(ErrTimeout, err)
		msg = chatErrors.New(ErrTimeout).Message
	}
	if emitErr := out.Emit(sse.Error(msg)); emitErr != nil {
		return metricx.OutcomeClientGone, emitErr
	}
	return metricx.OutcomeFailed, err
}

// guard forwards to an Emitter until the first failure and then refuses
// every later event.
type guard struct {
	mu   sync.Mutex
	emit sse.Emitter
	err  error
}

func (g *guard) Emit(ev sse.Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	if err := g.emit.Emit(ev); err != nil {
		g.err = err
		return err
	}
	return nil
}

func (g *guard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
