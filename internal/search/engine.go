package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
	"github.com/Aman-CERP/folio/internal/store"
)

// DefaultDebounce is the delay between the last keystroke and the search.
const DefaultDebounce = 200 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the time based scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sched = s
		}
	}
}

// WithDebounce sets the keystroke debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBackend loads the index into the given backend instead of the one
// recorded in the artifact.
func WithBackend(b store.Backend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

// Engine answers queries from a Host against a fetched index.
//
// All host mutations happen with e.mu held, so a Host sees calls from one
// goroutine at a time even though debounced tasks fire on timer goroutines.
type Engine struct {
	host     Host
	fetcher  Fetcher
	sched    Scheduler
	debounce time.Duration
	logger   *slog.Logger
	backend  store.Backend

	mu       sync.Mutex
	state    State
	index    store.Index
	loadErr  error
	seq      uint64
	pending  Timer
	disabled bool
	closed   bool
	done     chan struct{}
}

// New creates an engine for host. If the host is missing any of its
// elements the engine is disabled and every operation is a no-op.
func New(host Host, fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		host:     host,
		fetcher:  fetcher,
		sched:    RealScheduler,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if host == nil || fetcher == nil || !host.Attached() {
		e.disabled = true
		close(e.done)
	}
	return e
}

// Disabled reports whether the engine was created without a usable host.
func (e *Engine) Disabled() bool {
	return e.disabled
}

// State returns the current load state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start begins the one asynchronous index fetch. Calls after the first are
// ignored. The fetch is never retried.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.disabled || e.closed || e.state != StateUninitialized {
		e.mu.Unlock()
		return
	}
	e.state = StateLoading
	e.mu.Unlock()

	go e.load(ctx)
}

func (e *Engine) load(ctx context.Context) {
	defer close(e.done)

	start := time.Now()
	idx, err := e.fetchIndex(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.state = StateFailed
		e.loadErr = err
		e.logger.Error("search_index_load_failed",
			append(folioerrors.LogAttrs(err), slog.Duration("duration", time.Since(start)))...)
		if !e.closed {
			e.host.HideForm()
		}
		return
	}

	if e.closed {
		_ = idx.Close()
		e.state = StateFailed
		e.loadErr = store.ErrIndexClosed
		return
	}

	e.index = idx
	e.state = StateReady
	e.logger.Info("search_index_loaded",
		slog.String("backend", string(idx.Backend())),
		slog.Int("documents", idx.Len()),
		slog.Duration("duration", time.Since(start)))
}

func (e *Engine) fetchIndex(ctx context.Context) (store.Index, error) {
	rc, err := e.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return store.LoadAs(rc, e.backend)
}

// Wait blocks until the fetch started by Start has finished and returns
// its error. A disabled engine returns immediately.
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// Search runs query and renders the result into the host. A blank query
// clears and hides the panel. Before the index is ready it does nothing.
func (e *Engine) Search(query string) []store.Hit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchLocked(query)
}

func (e *Engine) searchLocked(query string) []store.Hit {
	if e.disabled || e.closed || e.state == StateFailed {
		return nil
	}

	if strings.TrimSpace(query) == "" {
		e.host.ClearResults()
		e.host.SetResultsHidden(true)
		e.host.SetExpanded(false)
		return nil
	}

	if e.state != StateReady {
		return nil
	}

	hits, err := e.index.Search(context.Background(), query, store.DefaultWeights)
	if err != nil {
		e.logger.Warn("search_failed",
			append(folioerrors.LogAttrs(err), slog.String("query", query))...)
		return nil
	}

	e.host.ClearResults()
	e.host.RenderResults(NewView(query, hits))
	e.host.SetResultsHidden(false)
	e.host.SetExpanded(true)

	e.logger.Debug("search_executed",
		slog.String("query", query),
		slog.Int("hits", len(hits)))
	return hits
}

// Input handles a keystroke: the panel becomes a live region and a search
// is scheduled after the debounce delay. Only the latest scheduled search
// runs; older ones are dropped when they fire.
func (e *Engine) Input() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disabled || e.closed {
		return
	}

	e.host.MarkLive()
	seq := e.bumpLocked()
	e.pending = e.sched.AfterFunc(e.debounce, func() {
		e.fire(seq)
	})
}

func (e *Engine) fire(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.seq {
		return
	}
	e.pending = nil
	e.searchLocked(e.host.InputValue())
}

// Submit runs the search for the current input immediately. It returns
// true when the default form submission should be suppressed.
func (e *Engine) Submit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disabled || e.closed {
		return false
	}

	e.bumpLocked()
	e.searchLocked(e.host.InputValue())
	return true
}

// bumpLocked invalidates any scheduled search and returns the new sequence.
func (e *Engine) bumpLocked() uint64 {
	e.seq++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	return e.seq
}

// Close cancels pending work and releases the index.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.bumpLocked()

	if e.index != nil {
		return e.index.Close()
	}
	return nil
}

// NewView renders hits for query into the results view.
func NewView(query string, hits []store.Hit) View {
	if len(hits) == 0 {
		return View{Query: query, Message: NoResultsMessage}
	}

	entries := make([]Entry, 0, len(hits))
	for _, h := range hits {
		entries = append(entries, Entry{
			Title:       h.Document.Title,
			URL:         h.Ref,
			Description: h.Document.Description,
		})
	}
	return View{
		Query:   query,
		Heading: ResultsHeading(len(entries), query),
		Entries: entries,
	}
}
