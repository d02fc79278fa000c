package progress

import (
	"fmt"
	"log/slog"
	"sync"
)

// Update is a single status emission delivered to the presentation layer.
// Percent is nil when the emission carries no bar position.
type Update struct {
	Message string
	Percent *float64
	Err     bool
}

// Sink receives every Update in emission order. The tracker serialises
// emissions under its lock, so a sink backed by an unbuffered or ordered
// channel observes updates exactly as they were produced.
type Sink func(Update)

// Span is an allocated sub-range [Start,End] on the overall 0-100 scale.
type Span struct {
	Start float64
	End   float64
}

// At returns the absolute position for a fraction of the span.
func (s Span) At(frac float64) float64 {
	return s.Start + frac*(s.End-s.Start)
}

// Sub carves a nested span out of this one, e.g. Sub(0.05, 0.65) allocates
// the region between 5% and 65% of the parent.
func (s Span) Sub(from, to float64) Span {
	return Span{Start: s.At(from), End: s.At(to)}
}

// Tracker remaps per-stage collaborator progress onto the overall scale.
// Collaborators report with their own internal max/current counters and no
// knowledge of the run; the tracker's job is purely arithmetic remapping so
// the visible bar is monotonic within a stage. It is safe for concurrent
// use, although a run drives it from a single worker goroutine.
type Tracker struct {
	mux  sync.Mutex
	sink Sink

	span    Span
	label   string
	max     int
	current int
	status  string
}

// New returns a tracker that emits through the supplied sink. A nil sink
// makes every emission a no-op, which keeps tests terse.
func New(sink Sink) *Tracker {
	if sink == nil {
		sink = func(Update) {}
	}
	return &Tracker{sink: sink}
}

// BeginStage establishes the active sub-range, resets the internal max and
// current counters and immediately emits label at the start of the range.
func (t *Tracker) BeginStage(span Span, label string) {
	t.mux.Lock()
	t.span = span
	t.label = label
	t.max = 0
	t.current = 0
	t.status = ""
	t.emitLocked(label, span.Start, false)
	t.mux.Unlock()
}

// Span returns the active stage sub-range.
func (t *Tracker) Span() Span {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.span
}

// SetStatus combines the stage label with the collaborator-supplied text and
// re-emits at the current computed position. It implements the set-status
// hook of the installer callback contract.
func (t *Tracker) SetStatus(text string) {
	t.mux.Lock()
	t.status = text
	t.emitLocked(t.combinedLocked(), t.positionLocked(), false)
	t.mux.Unlock()
}

// SetProgress records the collaborator's current tick and re-emits. It
// implements the set-progress hook of the installer callback contract.
func (t *Tracker) SetProgress(value int) {
	t.mux.Lock()
	t.current = value
	t.emitLocked(t.combinedLocked(), t.positionLocked(), false)
	t.mux.Unlock()
}

// SetMax records the collaborator's tick ceiling for the current sub-step
// and resets the current tick. Non-positive values are ignored - some
// collaborators emit a zero max for metadata-only steps.
func (t *Tracker) SetMax(value int) {
	t.mux.Lock()
	defer t.mux.Unlock()
	if value <= 0 {
		slog.Warn("progress: ignored non-positive max", "value", value, "stage", t.label)
		return
	}
	t.max = value
	t.current = 0
	t.emitLocked(t.combinedLocked(), t.span.Start, false)
}

// Report emits an arbitrary message at an absolute bar position.
func (t *Tracker) Report(message string, percent float64) {
	t.mux.Lock()
	t.emitLocked(message, percent, false)
	t.mux.Unlock()
}

// Error emits a failure message at an absolute bar position. By convention
// stage executors hold the bar at the start of the failed stage's range.
func (t *Tracker) Error(message string, percent float64) {
	t.mux.Lock()
	t.emitLocked(message, percent, true)
	t.mux.Unlock()
}

// Message emits a status line without moving the bar.
func (t *Tracker) Message(message string, isError bool) {
	t.mux.Lock()
	t.sink(Update{Message: message, Err: isError})
	t.mux.Unlock()
}

func (t *Tracker) combinedLocked() string {
	if t.status == "" {
		return t.label
	}
	return fmt.Sprintf("%s: %s", t.label, t.status)
}

// positionLocked computes start + (current/max)*(end-start), holding at the
// range start while no max has been announced.
func (t *Tracker) positionLocked() float64 {
	if t.max <= 0 {
		return t.span.Start
	}
	frac := float64(t.current) / float64(t.max)
	if frac > 1 {
		frac = 1
	}
	return t.span.At(frac)
}

func (t *Tracker) emitLocked(message string, percent float64, isError bool) {
	p := percent
	t.sink(Update{Message: message, Percent: &p, Err: isError})
}
