package sse

import (
	"io"
	"sync"
)

// Emitter accepts outbound events. The chat relay owns one per request and
// hands it to tool executors.
type Emitter interface {
	Emit(ev Event) error
}

// Writer is an Emitter over an io.Writer. Each event is written and flushed
// under one lock. The first write or flush failure sticks: later calls
// return it without writing, so a vanished client stops the stream.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	flush func() error
	err   error
	n     int
}

// NewWriter creates a Writer. flush may be nil.
func NewWriter(w io.Writer, flush func() error) *Writer {
	return &Writer{w: w, flush: flush}
}

// Emit encodes and writes ev.
func (w *Writer) Emit(ev Event) error {
	frame, err := Encode(ev)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if _, err := w.w.Write(frame); err != nil {
		w.err = sseErrors.NewWithCause(CodeWriteFailed, err)
		return w.err
	}
	if w.flush != nil {
		if err := w.flush(); err != nil {
			w.err = sseErrors.NewWithCause(CodeWriteFailed, err)
			return w.err
		}
	}
	w.n++
	return nil
}

// Err returns the sticky write error, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Count returns how many events were written successfully.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Recorder is an Emitter that keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	failAt int
	err    error
}

// NewRecorder creates a Recorder that never fails.
func NewRecorder() *Recorder {
	return &Recorder{failAt: -1}
}

// FailAfter makes every emit after the first n return err.
func (r *Recorder) FailAfter(n int, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAt = n
	r.err = err
	return r
}

func (r *Recorder) Emit(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAt >= 0 && len(r.events) >= r.failAt {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
