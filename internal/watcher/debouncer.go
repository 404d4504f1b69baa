package watcher

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Debouncer merges events per path until the stream has been quiet for
// the window, then emits them as one batch sorted by path.
//
// Merging keeps the net effect of a sequence on one path:
//   - create then modify stays a create
//   - create then delete cancels out
//   - delete then create becomes a modify
//   - anything else keeps the latest operation
type Debouncer struct {
	window  time.Duration
	logger  *slog.Logger
	mu      sync.Mutex
	pending map[string]pendingEvent
	timer   *time.Timer
	output  chan []FileEvent
	stopped bool
}

type pendingEvent struct {
	event FileEvent
	first Operation
}

// NewDebouncer creates a debouncer emitting on a channel buffered for
// buffer batches.
func NewDebouncer(window time.Duration, buffer int, logger *slog.Logger) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Debouncer{
		window:  window,
		logger:  logger,
		pending: make(map[string]pendingEvent),
		output:  make(chan []FileEvent, buffer),
	}
}

// Add records an event and restarts the quiet period.
func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.pending[event.Path]; ok {
		merged, keep := merge(prev, event)
		if keep {
			d.pending[event.Path] = pendingEvent{event: merged, first: prev.first}
		} else {
			delete(d.pending, event.Path)
		}
	} else {
		d.pending[event.Path] = pendingEvent{event: event, first: event.Operation}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// merge folds next into prev. It reports false when the two cancel out.
func merge(prev pendingEvent, next FileEvent) (FileEvent, bool) {
	switch {
	case prev.first == OpCreate && next.Operation == OpModify:
		out := prev.event
		out.Timestamp = next.Timestamp
		return out, true
	case prev.first == OpCreate && next.Operation == OpDelete:
		return FileEvent{}, false
	case prev.first == OpDelete && next.Operation == OpCreate:
		next.Operation = OpModify
		return next, true
	default:
		return next, true
	}
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.pending) == 0 {
		return
	}

	batch := make([]FileEvent, 0, len(d.pending))
	for _, pe := range d.pending {
		batch = append(batch, pe.event)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	d.pending = make(map[string]pendingEvent)

	select {
	case d.output <- batch:
	default:
		d.logger.Warn("watch_batch_dropped", slog.Int("batch_size", len(batch)))
	}
}

// Output returns the channel of batches.
func (d *Debouncer) Output() <-chan []FileEvent {
	return d.output
}

// Stop discards pending events and closes the output channel. Safe to
// call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
