package watcher

import (
	"context"
	"log/slog"
)

// RebuildFunc performs a full rebuild after a batch of changes.
type RebuildFunc func(ctx context.Context, batch []FileEvent) error

// Rebuild calls fn once per batch until ctx is done or the watcher stops.
// A failed rebuild is logged and watching continues; the previous
// artifacts stay in place.
func Rebuild(ctx context.Context, w *Watcher, fn RebuildFunc) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.Errors():
			if ok {
				w.logger.Warn("watch_error", slog.String("error", err.Error()))
			}
		case batch, ok := <-w.Batches():
			if !ok {
				return nil
			}
			w.logger.Info("watch_batch", slog.Int("changes", len(batch)))
			if err := fn(ctx, batch); err != nil {
				w.logger.Error("watch_rebuild_failed", slog.String("error", err.Error()))
			}
		}
	}
}
