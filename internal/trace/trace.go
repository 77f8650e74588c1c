// Package trace records phase transitions of a clustering run.
//
// A Sink receives one Event per transition: workers starting and finishing
// a phase, arriving at and departing from a barrier, and the run converging
// or stopping. Each event is written atomically. Events from different
// workers carry no ordering guarantee beyond that.
package trace

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Phase names one step of the per-iteration worker state machine.
type Phase string

const (
	PhaseAssign       Phase = "assign"
	PhaseTally        Phase = "tally"
	PhaseLocalReduce  Phase = "local_reduce"
	PhaseGlobalReduce Phase = "global_reduce"
)

// Kind is the type of an Event.
type Kind string

const (
	KindRunStart      Kind = "run_start"
	KindPhaseStart    Kind = "phase_start"
	KindPhaseDone     Kind = "phase_done"
	KindBarrierArrive Kind = "barrier_arrive"
	KindBarrierDepart Kind = "barrier_depart"
	KindConverged     Kind = "converged"
	KindStopped       Kind = "stopped"
	KindRunDone       Kind = "run_done"
)

// Event is a single trace record. Fields that do not apply to a Kind are
// left at their zero value; Worker is -1 for run level events.
type Event struct {
	Kind      Kind
	Iteration int
	Worker    int
	Phase     Phase
	Barrier   int
	Flips     int
	Start     int
	End       int
	Reason    string
}

// Sink consumes trace events. Implementations must be safe for concurrent use.
type Sink interface {
	Record(Event)
}

// Nop is a Sink that drops every event.
type Nop struct{}

// Record implements Sink.
func (Nop) Record(Event) {}

// SlogSink writes events through a slog.Logger.
type SlogSink struct {
	logger *slog.Logger
	level  slog.Level
	out    *lockedWriter
}

// NewSlog returns a Sink backed by logger. Events are logged at level.
func NewSlog(logger *slog.Logger, level slog.Level) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger, level: level}
}

// NewJSON returns a Sink that writes one JSON object per event to w.
// Writes to w are serialised.
func NewJSON(w io.Writer) *SlogSink {
	out := &lockedWriter{w: w}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	s := NewSlog(slog.New(handler), slog.LevelInfo)
	s.out = out
	return s
}

// With returns a sink that adds attrs to every event.
func (s *SlogSink) With(args ...any) *SlogSink {
	return &SlogSink{logger: s.logger.With(args...), level: s.level, out: s.out}
}

// Err returns the first error writing to the underlying writer of a sink
// made by NewJSON. slog drops write errors, so this is the only place they
// surface.
func (s *SlogSink) Err() error {
	if s.out == nil {
		return nil
	}
	s.out.mu.Lock()
	defer s.out.mu.Unlock()
	return s.out.err
}

// Record implements Sink.
func (s *SlogSink) Record(ev Event) {
	attrs := make([]slog.Attr, 0, 8)
	attrs = append(attrs, slog.Int("iteration", ev.Iteration), slog.Int("worker", ev.Worker))

	switch ev.Kind {
	case KindPhaseStart:
		attrs = append(attrs, slog.String("phase", string(ev.Phase)))
		if ev.Phase == PhaseAssign {
			attrs = append(attrs, slog.Int("start", ev.Start), slog.Int("end", ev.End))
		}
	case KindPhaseDone:
		attrs = append(attrs, slog.String("phase", string(ev.Phase)), slog.Int("flips", ev.Flips))
	case KindBarrierArrive, KindBarrierDepart:
		attrs = append(attrs, slog.Int("barrier", ev.Barrier))
	case KindConverged, KindRunDone:
		attrs = append(attrs, slog.Int("flips", ev.Flips))
	case KindStopped:
		attrs = append(attrs, slog.String("reason", ev.Reason), slog.Int("flips", ev.Flips))
	case KindRunStart:
		attrs = append(attrs, slog.Int("points", ev.End))
	}

	s.logger.LogAttrs(context.Background(), s.level, string(ev.Kind), attrs...)
}

// lockedWriter serialises Write calls so entries never interleave, and
// keeps the first write error.
type lockedWriter struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, err := l.w.Write(p)
	if err != nil && l.err == nil {
		l.err = err
	}
	return n, err
}

// Recorder is a Sink that keeps events in memory. It is meant for tests and
// for callers that want to inspect a run after the fact.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Record implements Sink.
func (r *Recorder) Record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events of the given kind.
func (r *Recorder) Filter(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
