// Package watcher watches a content directory and delivers debounced
// batches of changes, one batch per burst of editing.
//
// Usage:
//
//	w, err := watcher.New(watcher.Options{Debounce: 500 * time.Millisecond})
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, "content") }()
//
//	for batch := range w.Batches() {
//	    // rebuild
//	}
package watcher
