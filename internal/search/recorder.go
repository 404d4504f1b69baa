package search

import (
	"sync"
)

// Recorder is an in-memory Host. It backs the non-interactive CLI and
// records every mutation for inspection.
type Recorder struct {
	mu sync.Mutex

	missing  bool
	value    string
	view     *View
	hidden   bool
	expanded bool
	live     bool
	formOff  bool
	renders  int
}

var _ Host = (*Recorder)(nil)

// NewRecorder returns an attached recorder with a hidden results panel.
func NewRecorder() *Recorder {
	return &Recorder{hidden: true}
}

// NewDetachedRecorder returns a recorder that reports a missing element.
func NewDetachedRecorder() *Recorder {
	return &Recorder{hidden: true, missing: true}
}

// SetValue types into the input.
func (r *Recorder) SetValue(v string) {
	r.mu.Lock()
	r.value = v
	r.mu.Unlock()
}

// Snapshot describes the recorder's current state.
type Snapshot struct {
	View       *View
	Hidden     bool
	Expanded   bool
	Live       bool
	FormHidden bool
	Renders    int
}

// Snapshot returns a copy of the recorded state.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Hidden:     r.hidden,
		Expanded:   r.expanded,
		Live:       r.live,
		FormHidden: r.formOff,
		Renders:    r.renders,
	}
	if r.view != nil {
		v := *r.view
		s.View = &v
	}
	return s
}

func (r *Recorder) Attached() bool { return !r.missing }

func (r *Recorder) InputValue() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

func (r *Recorder) ClearResults() {
	r.mu.Lock()
	r.view = nil
	r.mu.Unlock()
}

func (r *Recorder) RenderResults(v View) {
	r.mu.Lock()
	r.view = &v
	r.renders++
	r.mu.Unlock()
}

func (r *Recorder) SetResultsHidden(hidden bool) {
	r.mu.Lock()
	r.hidden = hidden
	r.mu.Unlock()
}

func (r *Recorder) SetExpanded(expanded bool) {
	r.mu.Lock()
	r.expanded = expanded
	r.mu.Unlock()
}

func (r *Recorder) MarkLive() {
	r.mu.Lock()
	r.live = true
	r.mu.Unlock()
}

func (r *Recorder) HideForm() {
	r.mu.Lock()
	r.formOff = true
	r.mu.Unlock()
}
