package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/folio/internal/config"
	folioerrors "github.com/Aman-CERP/folio/internal/errors"
	"github.com/Aman-CERP/folio/internal/store"
)

func writeFile(t *testing.T, dir, rel, body string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func post(title, date string, tags ...string) string {
	all := append([]string{"posts"}, tags...)
	tagsJSON, _ := json.Marshal(all)
	return fmt.Sprintf("---\ntitle: %s\ndescription: About %s\ntags: %s\ndate: %s\n---\nBody of %s.\n",
		title, title, tagsJSON, date, title)
}

// newSite lays out five go posts, two of them also tagged rust, and an
// about page outside the collection.
func newSite(t *testing.T) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "content/posts/a.md", post("Alpha", "2024-01-01", "go"))
	writeFile(t, root, "content/posts/b.md", post("Bravo", "2024-01-02", "go", "rust"))
	writeFile(t, root, "content/posts/c.md", post("Charlie", "2024-01-03", "go"))
	writeFile(t, root, "content/posts/d.md", post("Delta", "2024-01-04", "go", "rust"))
	writeFile(t, root, "content/posts/e.md", post("Echo", "2024-01-05", "go"))
	writeFile(t, root, "content/about.md", "---\ntitle: About\ndate: 2023-01-01\n---\nHi.\n")

	cfg := config.NewConfig()
	cfg.Pagination.PageSize = 2
	return root, cfg
}

func readJSON(t *testing.T, path string, into any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, into))
}

func TestBuilder_Run(t *testing.T) {
	// Given: a site with five posts and page size two
	root, cfg := newSite(t)
	var steps []Step
	b := New(root, cfg, WithObserver(func(s Step, _ string) { steps = append(steps, s) }))

	// When: running a build
	report, err := b.Run(context.Background())
	require.NoError(t, err)

	// Then: the report counts everything
	assert.Equal(t, 6, report.Items)
	assert.Equal(t, 5, report.Posts)
	assert.Equal(t, 2, report.Keys)
	assert.Equal(t, 4, report.Pages) // go: 2,2,1  rust: 2
	assert.Equal(t, 6, report.Index.Documents)
	assert.Equal(t, []Step{StepLoad, StepPaginate, StepIndex, StepWrite}, steps)

	out := filepath.Join(root, "_site")
	assert.ElementsMatch(t, []string{
		filepath.Join(out, TagPagesFile),
		filepath.Join(out, TagCountsFile),
		filepath.Join(out, "search-index.json"),
	}, report.Artifacts)

	// And: tag pages are grouped, newest first, with links
	var pages []TagPage
	readJSON(t, filepath.Join(out, TagPagesFile), &pages)
	require.Len(t, pages, 4)

	assert.Equal(t, "go", pages[0].Tag)
	assert.Equal(t, "/tags/go/", pages[0].URL)
	assert.Equal(t, 3, pages[0].TotalPages)
	assert.Equal(t, []string{"/tags/go/", "/tags/go/2/", "/tags/go/3/"}, pages[0].Hrefs)
	require.Len(t, pages[0].Items, 2)
	assert.Equal(t, "Echo", pages[0].Items[0].Title)
	assert.Equal(t, "Delta", pages[0].Items[1].Title)
	assert.Equal(t, []string{"go", "rust"}, pages[0].Items[1].Tags)
	assert.Equal(t, "/tags/go/2/", pages[0].Href.Next)
	assert.Empty(t, pages[0].Href.Previous)

	assert.Equal(t, 2, pages[2].PageNumber)
	require.Len(t, pages[2].Items, 1)
	assert.Equal(t, "Alpha", pages[2].Items[0].Title)
	assert.Equal(t, "/tags/go/2/", pages[2].Href.Previous)
	assert.True(t, pages[2].Links[2].Current)

	assert.Equal(t, "rust", pages[3].Tag)
	assert.Equal(t, "Delta", pages[3].Items[0].Title)
	assert.Equal(t, "Bravo", pages[3].Items[1].Title)

	// And: counts follow key order
	var counts []TagCount
	readJSON(t, filepath.Join(out, TagCountsFile), &counts)
	assert.Equal(t, []TagCount{
		{Tag: "go", URL: "/tags/go/", Count: 5},
		{Tag: "rust", URL: "/tags/rust/", Count: 2},
	}, counts)

	// And: the search index loads and answers queries
	f, err := os.Open(filepath.Join(out, "search-index.json"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	idx, err := store.Load(f)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	hits, err := idx.Search(context.Background(), "charlie", store.DefaultWeights)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "/posts/c/", hits[0].Ref)

	// And: no staging directory or lock holder is left behind
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".folio-build-")
	}
}

func TestBuilder_KeySortDesc(t *testing.T) {
	root, cfg := newSite(t)
	cfg.Pagination.KeySort = "desc"

	_, err := New(root, cfg).Run(context.Background())
	require.NoError(t, err)

	var counts []TagCount
	readJSON(t, filepath.Join(root, "_site", TagCountsFile), &counts)
	require.Len(t, counts, 2)
	assert.Equal(t, "rust", counts[0].Tag)
}

func TestBuilder_SQLiteBackend(t *testing.T) {
	root, cfg := newSite(t)
	cfg.Search.Backend = "sqlite"
	cfg.Search.IndexPath = "/assets/search.json"

	report, err := New(root, cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, store.BackendSQLite, report.Index.Backend)
	assert.Equal(t, filepath.Join(root, "_site", "assets", "search.json"), report.Index.Path)
	assert.FileExists(t, report.Index.Path)
}

func TestBuilder_FailureLeavesArtifactsUntouched(t *testing.T) {
	// Given: a successful first build
	root, cfg := newSite(t)
	_, err := New(root, cfg).Run(context.Background())
	require.NoError(t, err)
	pagesPath := filepath.Join(root, "_site", TagPagesFile)
	before, err := os.ReadFile(pagesPath)
	require.NoError(t, err)

	// When: a malformed post breaks the next run
	writeFile(t, root, "content/posts/f.md", post("Foxtrot", "2024-01-06", "go"))
	writeFile(t, root, "content/posts/broken.md", "---\ntitle: [unclosed\n---\n")
	_, err = New(root, cfg).Run(context.Background())

	// Then: the run fails and the old artifacts remain
	require.Error(t, err)
	assert.True(t, folioerrors.HasCode(err, folioerrors.ErrCodeFileCorrupt))
	after, err := os.ReadFile(pagesPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBuilder_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		code   string
	}{
		{"page size", func(c *config.Config) { c.Pagination.PageSize = 0 }, folioerrors.ErrCodeInvalidPageSize},
		{"key sort", func(c *config.Config) { c.Pagination.KeySort = "sideways" }, folioerrors.ErrCodeInvalidKeySort},
		{"backend", func(c *config.Config) { c.Search.Backend = "lucene" }, folioerrors.ErrCodeUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, cfg := newSite(t)
			tt.mutate(cfg)

			_, err := New(root, cfg).Run(context.Background())

			require.Error(t, err)
			assert.True(t, folioerrors.HasCode(err, tt.code), "got %v", err)
			assert.NoFileExists(t, filepath.Join(root, "_site", TagPagesFile))
		})
	}
}

func TestBuilder_MissingContent(t *testing.T) {
	root := t.TempDir()

	_, err := New(root, config.NewConfig()).Run(context.Background())

	require.Error(t, err)
	assert.True(t, folioerrors.HasCode(err, folioerrors.ErrCodeFileNotFound))
}

func TestBuilder_LockedOutput(t *testing.T) {
	// Given: another holder of the output lock
	root, cfg := newSite(t)
	held := NewFileLock(filepath.Join(root, "_site"))
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = held.Unlock() }()

	// When: building
	_, err = New(root, cfg).Run(context.Background())

	// Then: the run is refused
	require.Error(t, err)
	assert.True(t, folioerrors.HasCode(err, folioerrors.ErrCodeOutputLocked))
}

func TestBuilder_CancelledContext(t *testing.T) {
	root, cfg := newSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(root, cfg).Run(ctx)

	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(root, "_site", TagPagesFile))
}

func TestFileLock_UnlockTwice(t *testing.T) {
	l := NewFileLock(t.TempDir())
	ok, err := l.TryLock()
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Unlock())
	require.NoError(t, l.Unlock())
	assert.Equal(t, LockFileName, filepath.Base(l.Path()))
}

func TestStep_String(t *testing.T) {
	assert.Equal(t, "load", StepLoad.String())
	assert.Equal(t, "write", StepWrite.String())
	assert.Equal(t, "Step(9)", Step(9).String())
}
