package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/folio/internal/build"
	"github.com/Aman-CERP/folio/internal/search"
	"github.com/Aman-CERP/folio/internal/watcher"
)

func TestWatcher_PostAdded_RebuildsIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a built site and a watcher on its content
	root, cfg := createTestSite(t)
	b := buildSite(t, root, cfg)

	w, err := watcher.New(watcher.Options{Debounce: 50 * time.Millisecond}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Start(ctx, cfg.ContentPath(root)) }()
	defer func() { _ = w.Stop() }()
	time.Sleep(100 * time.Millisecond)

	rebuilt := make(chan []watcher.FileEvent, 1)
	go func() {
		_ = watcher.Rebuild(ctx, w, func(ctx context.Context, batch []watcher.FileEvent) error {
			if _, err := build.New(root, cfg).Run(ctx); err != nil {
				return err
			}
			select {
			case rebuilt <- batch:
			default:
			}
			return nil
		})
	}()

	// When: a new post is written
	writeFile(t, root, "content/posts/lifetimes.md", post("Lifetimes", 5, "rust"))

	// Then: the rebuilt artifact contains it
	select {
	case batch := <-rebuilt:
		assert.NotEmpty(t, batch)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a rebuild")
	}

	e, rec := readyEngine(t, &search.FileFetcher{Path: b.IndexPath()})
	rec.SetValue("lifetimes")
	e.Submit()
	snap := rec.Snapshot()
	require.NotNil(t, snap.View)
	require.Len(t, snap.View.Entries, 1)
	assert.Equal(t, "/posts/lifetimes/", snap.View.Entries[0].URL)
}

func TestWatcher_BrokenPost_KeepsPreviousArtifacts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a built site
	root, cfg := createTestSite(t)
	b := buildSite(t, root, cfg)

	// When: a rebuild fails
	writeFile(t, root, "content/posts/broken.md", "---\ntitle: [unclosed\n---\n")
	_, err := build.New(root, cfg).Run(context.Background())

	// Then: the old index still serves the old posts
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
	e, _ := readyEngine(t, &search.FileFetcher{Path: b.IndexPath()})
	assert.Len(t, e.Search("rust"), 2)
}
