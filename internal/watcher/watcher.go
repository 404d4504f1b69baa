package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a directory tree with fsnotify. New subdirectories are
// added as they appear. Hidden entries and editor scratch files are
// ignored.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	logger    *slog.Logger
	errors    chan error
	stopCh    chan struct{}
	root      string

	mu      sync.Mutex
	stopped bool
}

// New creates a watcher. Call Start to begin watching.
func New(opts Options, logger *slog.Logger) (*Watcher, error) {
	opts = opts.WithDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		fs:        fsw,
		debouncer: NewDebouncer(opts.Debounce, opts.BatchBufferSize, logger),
		logger:    logger,
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start watches root until ctx is cancelled or Stop is called. It blocks.
func (w *Watcher) Start(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	w.root = abs

	if err := w.addRecursive(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	w.logger.Info("watch_started", slog.String("root", abs))

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// Batches returns the debounced batches. Closed by Stop.
func (w *Watcher) Batches() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops watching. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	return w.fs.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	rel = filepath.ToSlash(rel)
	if ignored(rel) {
		return
	}

	isDir := false
	if info, err := os.Stat(ev.Name); err == nil {
		isDir = info.IsDir()
	}

	var op Operation
	switch {
	case ev.Has(fsnotify.Create):
		op = OpCreate
		if isDir {
			if err := w.addRecursive(ev.Name); err != nil {
				w.emitError(err)
			}
		}
	case ev.Has(fsnotify.Write):
		op = OpModify
	case ev.Has(fsnotify.Remove):
		op = OpDelete
	case ev.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.logger.Debug("watch_event", slog.String("path", rel), slog.String("op", op.String()))
	w.debouncer.Add(FileEvent{Path: rel, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(p)
	})
}

func (w *Watcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
		w.logger.Warn("watch_error_dropped", slog.String("error", err.Error()))
	}
}

// ignored reports whether a relative path is hidden or an editor scratch
// file.
func ignored(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	base := filepath.Base(rel)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
