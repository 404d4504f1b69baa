package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Aman-CERP/folio/internal/search"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	stage  Stage
	errors []ErrorEvent
}

var _ Renderer = (*PlainRenderer)(nil)

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stage = event.Stage
	if event.Message != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), event.Message)
		return
	}
	_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), event.Stage)
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}
	if event.File != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.File, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats BuildStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stage = StageComplete
	_, _ = fmt.Fprintf(r.out, "Complete: %d posts, %d tags, %d pages, %d documents indexed in %s\n",
		stats.Items, stats.Keys, stats.Pages, stats.Documents, stats.Duration.Round(time.Millisecond))
	if stats.IndexBytes > 0 {
		_, _ = fmt.Fprintf(r.out, "Index: %s (%s)\n", FormatBytes(stats.IndexBytes), stats.Backend)
	}
	if stats.Errors > 0 {
		_, _ = fmt.Fprintf(r.out, "%d errors\n", stats.Errors)
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

// WriteView prints a search result view as plain text, one result per
// block, in ranked order.
func WriteView(w io.Writer, v search.View, styles Styles) error {
	if len(v.Entries) == 0 {
		_, err := fmt.Fprintln(w, v.Message)
		return err
	}

	if _, err := fmt.Fprintln(w, styles.Header.Render(v.Heading)); err != nil {
		return err
	}
	for _, e := range v.Entries {
		if _, err := fmt.Fprintf(w, "\n%s\n  %s\n", styles.Title.Render(e.Title), styles.URL.Render(e.URL)); err != nil {
			return err
		}
		if e.Description != "" {
			if _, err := fmt.Fprintf(w, "  %s\n", styles.Description.Render(e.Description)); err != nil {
				return err
			}
		}
	}
	return nil
}
