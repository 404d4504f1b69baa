// Package search is the runtime query engine. It loads the serialized
// index once, runs weighted queries against it and renders results into
// a Host: an HTML page, a terminal UI or an in-memory recorder.
package search

import (
	"fmt"
)

// State is the engine's load state.
type State int

const (
	// StateUninitialized means Start has not been called.
	StateUninitialized State = iota
	// StateLoading means the index fetch is in flight.
	StateLoading
	// StateReady means the index is loaded. Ready is terminal.
	StateReady
	// StateFailed means the fetch or parse failed. Failed is terminal.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// NoResultsMessage is shown when a search matches nothing.
const NoResultsMessage = "No results found."

// Entry is one rendered result.
type Entry struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// View is the rendered content of the results panel. Either Heading and
// Entries are set, or Message is.
type View struct {
	Query   string  `json:"query"`
	Heading string  `json:"heading,omitempty"`
	Entries []Entry `json:"entries,omitempty"`
	Message string  `json:"message,omitempty"`
}

// ResultsHeading formats the heading shown above n results.
func ResultsHeading(n int, query string) string {
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d Search Result%s for \"%s\"", n, plural, query)
}

// Host is the UI surface the engine renders into. The engine calls it
// from one goroutine at a time.
type Host interface {
	// Attached reports whether the form, the input and the results
	// panel all exist. An unattached host disables the engine.
	Attached() bool

	// InputValue returns the current text of the search input.
	InputValue() string

	// ClearResults removes everything rendered in the results panel.
	ClearResults()

	// RenderResults draws v into the (cleared) results panel.
	RenderResults(v View)

	// SetResultsHidden shows or hides the results panel.
	SetResultsHidden(hidden bool)

	// SetExpanded sets the input's aria-expanded state.
	SetExpanded(expanded bool)

	// MarkLive marks the results panel as a polite live region.
	MarkLive()

	// HideForm hides the search form.
	HideForm()
}
