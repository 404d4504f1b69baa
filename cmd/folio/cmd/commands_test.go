package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
	"github.com/Aman-CERP/folio/internal/ui"
	"github.com/Aman-CERP/folio/pkg/version"
)

const searchPage = `<!DOCTYPE html>
<html><body>
<form id="search-form" role="search">
  <input id="search-input" type="search" aria-expanded="false">
</form>
<div id="search-results" hidden></div>
</body></html>`

// builtSite returns a site that has been built once.
func builtSite(t *testing.T) string {
	t.Helper()
	root := newSite(t)
	_, err := run(t, "-C", root, "build", "--no-tui")
	require.NoError(t, err)
	return root
}

func TestBuildCmd(t *testing.T) {
	// Given: a site with three posts under two tags
	root := newSite(t)

	// When: building with plain output
	out, err := run(t, "-C", root, "build", "--no-tui")

	// Then: the summary is printed and the artifacts exist
	require.NoError(t, err)
	assert.Contains(t, out, "Complete: 3 posts, 2 tags, 2 pages, 3 documents indexed")
	assert.Contains(t, out, "(bleve)")
	for _, name := range []string{"tag-pages.json", "tag-counts.json", "search-index.json"} {
		assert.FileExists(t, filepath.Join(root, "_site", name))
	}
}

func TestBuildCmd_MissingContent(t *testing.T) {
	// Given: a site without a content directory
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, root, ".folio.yaml", "version: 1\n")

	// When: building
	_, err := run(t, "-C", root, "build", "--no-tui")

	// Then: the build fails with file not found
	require.Error(t, err)
	assert.True(t, folioerrors.HasCode(err, folioerrors.ErrCodeFileNotFound))
}

func TestSearchCmd_Text(t *testing.T) {
	// Given: a built site
	root := builtSite(t)

	// When: searching for one post's title
	out, err := run(t, "-C", root, "search", "bravo")

	// Then: the result is printed under the site's heading
	require.NoError(t, err)
	assert.Contains(t, out, `1 Search Result for "bravo"`)
	assert.Contains(t, out, "Bravo")
	assert.Contains(t, out, "/posts/b/")
}

func TestSearchCmd_NoResults(t *testing.T) {
	root := builtSite(t)

	out, err := run(t, "-C", root, "search", "zebra")

	require.NoError(t, err)
	assert.Equal(t, "No results found.\n", out)
}

func TestSearchCmd_JSON(t *testing.T) {
	// Given: a built site
	root := builtSite(t)

	// When: searching a tag shared by two posts with JSON output and a limit
	out, err := run(t, "-C", root, "search", "rust", "--format", "json", "--limit", "1")
	require.NoError(t, err)

	// Then: one result is printed and the total is kept
	var res searchResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "rust", res.Query)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Results, 1)
	assert.Equal(t, `2 Search Results for "rust"`, res.Heading)
}

func TestSearchCmd_SQLiteBackend(t *testing.T) {
	root := builtSite(t)

	out, err := run(t, "-C", root, "search", "charlie", "--backend", "sqlite")

	require.NoError(t, err)
	assert.Contains(t, out, "/posts/c/")
}

func TestSearchCmd_InvalidFlags(t *testing.T) {
	root := builtSite(t)

	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"--format", "xml"}},
		{"backend", []string{"--backend", "lucene"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-C", root, "search", "rust"}, tt.args...)
			_, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestSearchCmd_MissingIndex(t *testing.T) {
	// Given: a site that was never built
	root := newSite(t)

	// When: searching
	_, err := run(t, "-C", root, "search", "rust")

	// Then: the index fetch fails
	require.Error(t, err)
	assert.True(t, folioerrors.HasCode(err, folioerrors.ErrCodeIndexFetch))
}

func TestSearchCmd_IndexOverHTTP(t *testing.T) {
	// Given: a built site served over HTTP
	root := builtSite(t)
	srv := httptest.NewServer(newSiteHandler(filepath.Join(root, "_site")))
	defer srv.Close()

	// When: searching against the site URL
	out, err := run(t, "-C", root, "search", "alpha", "--index", srv.URL+"/")

	// Then: the index is fetched from the configured path
	require.NoError(t, err)
	assert.Contains(t, out, "/posts/a/")
}

func TestSearchCmd_HTML(t *testing.T) {
	// Given: a built site and a page with a search form
	root := builtSite(t)
	page := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(page, []byte(searchPage), 0o644))

	// When: rendering a query into the page
	out, err := run(t, "-C", root, "search", "bravo", "--html", page)

	// Then: the results panel is filled and shown
	require.NoError(t, err)
	assert.Contains(t, out, `class="search-results-heading"`)
	assert.Contains(t, out, `href="/posts/b/"`)
	assert.Contains(t, out, `aria-expanded="true"`)
	assert.NotContains(t, out, "hidden")
}

func TestSearchCmd_HTMLWithoutForm(t *testing.T) {
	root := builtSite(t)
	page := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(page, []byte("<html><body><p>hi</p></body></html>"), 0o644))

	_, err := run(t, "-C", root, "search", "bravo", "--html", page)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no search form")
}

func TestStatusCmd(t *testing.T) {
	// Given: a built site
	root := builtSite(t)

	// When: asking for status as JSON
	out, err := run(t, "-C", root, "status", "--json")
	require.NoError(t, err)

	// Then: the artifact is described
	var info ui.StatusInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "ready", info.State)
	assert.Equal(t, 3, info.Documents)
	assert.Equal(t, "bleve", info.Backend)
	assert.Positive(t, info.Size)
}

func TestStatusCmd_Missing(t *testing.T) {
	root := newSite(t)

	out, err := run(t, "-C", root, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "missing")
}

func TestCollectStatus_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search-index.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	info := collectStatus(path)

	assert.Equal(t, "error", info.State)
	assert.NotEmpty(t, info.Error)
}

func TestSiteHandler_ServesIndex(t *testing.T) {
	// Given: a built site
	root := builtSite(t)
	h := newSiteHandler(filepath.Join(root, "_site"))

	// When: requesting the index
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search-index.json", nil))

	// Then: the artifact is served
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fingerprint"`)
}

func TestServeCmd_RequiresBuild(t *testing.T) {
	root := newSite(t)

	_, err := run(t, "-C", root, "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "folio build")
}

func TestConfigInit(t *testing.T) {
	// Given: a directory without configuration
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	// When: running config init twice
	out, err := run(t, "-C", dir, "config", "init")
	require.NoError(t, err)
	again, err := run(t, "-C", dir, "config", "init")
	require.NoError(t, err)

	// Then: the defaults are written once and the second run warns
	assert.Contains(t, out, "Created site configuration")
	data, err := os.ReadFile(filepath.Join(dir, ProjectConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "page_size: 10")
	assert.Contains(t, again, "already exists")
}

func TestConfigShow(t *testing.T) {
	// Given: a site overriding the page size
	root := newSite(t)

	// When: showing the merged config as JSON
	out, err := run(t, "-C", root, "config", "show", "--json")
	require.NoError(t, err)

	// Then: the override is visible
	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	pagination := cfg["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["page_size"])
}

func TestConfigShow_Defaults(t *testing.T) {
	root := newSite(t)

	out, err := run(t, "-C", root, "config", "show", "--source", "defaults")

	require.NoError(t, err)
	assert.Contains(t, out, "page_size: 10")
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{"default", nil, func(t *testing.T, out string) {
			assert.Contains(t, out, "folio")
			assert.Contains(t, out, "commit")
		}},
		{"short", []string{"--short"}, func(t *testing.T, out string) {
			assert.Equal(t, version.Version, strings.TrimSpace(out))
		}},
		{"json", []string{"--json"}, func(t *testing.T, out string) {
			var info version.BuildInfo
			require.NoError(t, json.Unmarshal([]byte(out), &info))
			assert.Equal(t, version.Version, info.Version)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"version"}, tt.args...)...)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestStageFor(t *testing.T) {
	assert.Equal(t, ui.StageLoading, stageFor(0))
	assert.Equal(t, ui.StageWriting, stageFor(3))
}
