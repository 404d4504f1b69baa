package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/folio/internal/build"
	"github.com/Aman-CERP/folio/internal/config"
	"github.com/Aman-CERP/folio/internal/mcp"
	"github.com/Aman-CERP/folio/internal/search"
	"github.com/Aman-CERP/folio/internal/store"
)

// Integration tests run a real build and then query its artifacts the
// way each consumer does: the page engine, the HTTP fetch and MCP.

func writeFile(t *testing.T, dir, rel, body string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func post(title string, day int, tags ...string) string {
	all := append([]string{"posts"}, tags...)
	tagsJSON, _ := json.Marshal(all)
	return fmt.Sprintf("---\ntitle: %s\ndescription: Notes on %s\ntags: %s\ndate: 2024-01-%02d\n---\n%s body.\n",
		title, title, tagsJSON, day, title)
}

func createTestSite(t *testing.T) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "content/posts/rust-guide.md", post("Rust Guide", 1, "rust"))
	writeFile(t, root, "content/posts/go-tour.md", post("Go Tour", 2, "go"))
	writeFile(t, root, "content/posts/ownership.md", post("Ownership", 3, "rust"))

	cfg := config.NewConfig()
	cfg.Pagination.PageSize = 1
	return root, cfg
}

func buildSite(t *testing.T, root string, cfg *config.Config) *build.Builder {
	t.Helper()
	b := build.New(root, cfg)
	_, err := b.Run(context.Background())
	require.NoError(t, err)
	return b
}

func readyEngine(t *testing.T, fetcher search.Fetcher) (*search.Engine, *search.Recorder) {
	t.Helper()
	rec := search.NewRecorder()
	e := search.New(rec, fetcher)
	t.Cleanup(func() { _ = e.Close() })

	e.Start(context.Background())
	require.NoError(t, e.Wait(context.Background()))
	require.Equal(t, search.StateReady, e.State())
	return e, rec
}

func TestIntegration_BuildThenSearch_FindsPosts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a built site
	root, cfg := createTestSite(t)
	b := buildSite(t, root, cfg)

	// When: a page engine loads the artifact from disk and submits a query
	e, rec := readyEngine(t, &search.FileFetcher{Path: b.IndexPath()})
	rec.SetValue("rust")
	require.True(t, e.Submit())

	// Then: the panel lists both rust posts
	snap := rec.Snapshot()
	require.NotNil(t, snap.View)
	assert.Equal(t, "2 Search Results for \"rust\"", snap.View.Heading)
	var urls []string
	for _, entry := range snap.View.Entries {
		urls = append(urls, entry.URL)
	}
	assert.ElementsMatch(t, []string{"/posts/rust-guide/", "/posts/ownership/"}, urls)
	assert.False(t, snap.Hidden)
	assert.True(t, snap.Expanded)
}

func TestIntegration_ServedArtifact_LoadsOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: the output directory behind a file server
	root, cfg := createTestSite(t)
	b := buildSite(t, root, cfg)
	srv := httptest.NewServer(http.FileServer(http.Dir(b.OutputDir())))
	defer srv.Close()

	// When: an engine fetches the index from the configured path
	e, rec := readyEngine(t, search.NewFetcher(srv.URL, cfg.Search.IndexPath))
	rec.SetValue("tour")
	e.Submit()

	// Then: it finds the go post
	snap := rec.Snapshot()
	require.NotNil(t, snap.View)
	require.Len(t, snap.View.Entries, 1)
	assert.Equal(t, "/posts/go-tour/", snap.View.Entries[0].URL)
}

func TestIntegration_EmptyQuery_HidesPanel(t *testing.T) {
	root, cfg := createTestSite(t)
	b := buildSite(t, root, cfg)
	e, rec := readyEngine(t, &search.FileFetcher{Path: b.IndexPath()})

	rec.SetValue("rust")
	e.Submit()
	rec.SetValue("   ")
	e.Submit()

	snap := rec.Snapshot()
	assert.Nil(t, snap.View)
	assert.True(t, snap.Hidden)
	assert.False(t, snap.Expanded)
}

func TestIntegration_MCPCache_FollowsRebuilds(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: an MCP index cache over a built site
	root, cfg := createTestSite(t)
	b := buildSite(t, root, cfg)
	cache, err := mcp.NewIndexCache(b.IndexPath(), "", mcp.DefaultCacheSize, nil)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	var before mcp.IndexInfo
	require.NoError(t, cache.With(context.Background(), func(_ store.Index, info mcp.IndexInfo) error {
		before = info
		return nil
	}))
	assert.Equal(t, 3, before.Documents)

	// When: a post is added and the site is rebuilt
	writeFile(t, root, "content/posts/traits.md", post("Traits", 4, "rust"))
	buildSite(t, root, cfg)
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(b.IndexPath(), future, future))

	// Then: the next request sees the new artifact
	var hits []store.Hit
	require.NoError(t, cache.With(context.Background(), func(idx store.Index, info mcp.IndexInfo) error {
		assert.Equal(t, 4, info.Documents)
		assert.NotEqual(t, before.Fingerprint, info.Fingerprint)
		hits, err = idx.Search(context.Background(), "traits", store.DefaultWeights)
		return err
	}))
	require.NotEmpty(t, hits)
	assert.Equal(t, "/posts/traits/", hits[0].Ref)
}

func TestIntegration_ConcurrentEngines_NoRace(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: one artifact shared by several page engines
	root, cfg := createTestSite(t)
	b := buildSite(t, root, cfg)

	// When: each engine loads and searches concurrently
	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := search.NewRecorder()
			e := search.New(rec, &search.FileFetcher{Path: b.IndexPath()})
			defer func() { _ = e.Close() }()
			e.Start(context.Background())
			if err := e.Wait(context.Background()); err != nil {
				return
			}
			results[i] = len(e.Search("rust"))
		}(i)
	}
	wg.Wait()

	// Then: every engine sees the same hits
	for i, n := range results {
		assert.Equal(t, 2, n, "engine %d", i)
	}
}
