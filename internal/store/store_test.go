package store

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

var backends = []Backend{BackendBleve, BackendSQLite}

func newTestIndex(t *testing.T, backend Backend, docs ...Document) Index {
	t.Helper()
	idx, err := NewIndex(backend)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	for _, doc := range docs {
		require.NoError(t, idx.AddDocument(context.Background(), doc))
	}
	return idx
}

func refs(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Ref
	}
	return out
}

func forEachBackend(t *testing.T, fn func(t *testing.T, backend Backend)) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			fn(t, b)
		})
	}
}

func TestSearch_TitleOutranksDescription(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		// Given: one document with the term in its title, one in its description
		idx := newTestIndex(t, backend,
			Document{Ref: "/a", Title: "Rust Guide"},
			Document{Ref: "/b", Description: "about Rust"},
		)

		// When: searching
		hits, err := idx.Search(context.Background(), "Rust", DefaultWeights)
		require.NoError(t, err)

		// Then: the title match ranks first
		assert.Equal(t, []string{"/a", "/b"}, refs(hits))
		assert.Greater(t, hits[0].Score, hits[1].Score)
	})
}

func TestSearch_TitleWeightSurvivesLengthNorm(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		// Given: a three-word title match and a one-word description match.
		// Both backends length-normalize per field, so the 10:3 weight ratio
		// holds for titles of a few words; a title of a dozen or more words
		// can fall behind a one-word description.
		idx := newTestIndex(t, backend,
			Document{Ref: "/b", Description: "rust"},
			Document{Ref: "/a", Title: "Rust Ownership Explained"},
		)

		// When: searching
		hits, err := idx.Search(context.Background(), "rust", DefaultWeights)
		require.NoError(t, err)

		// Then: the title match still ranks first
		assert.Equal(t, []string{"/a", "/b"}, refs(hits))
	})
}

func TestSQLiteIndex_CodedFailures(t *testing.T) {
	// Given: a SQLite index and a canceled context
	idx := newTestIndex(t, BackendSQLite, Document{Ref: "/a", Title: "Rust"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When: adding and searching
	addErr := idx.AddDocument(ctx, Document{Ref: "/b", Title: "Go"})
	_, searchErr := idx.Search(ctx, "rust", DefaultWeights)

	// Then: each failure carries its code and cause, and nothing was added
	assert.True(t, folioerrors.HasCode(addErr, folioerrors.ErrCodeIndexFailed), "got %v", addErr)
	assert.ErrorIs(t, addErr, context.Canceled)
	assert.True(t, folioerrors.HasCode(searchErr, folioerrors.ErrCodeSearchFailed), "got %v", searchErr)
	assert.ErrorIs(t, searchErr, context.Canceled)
	assert.Equal(t, 1, idx.Len())
	_, ok := idx.Document("/b")
	assert.False(t, ok)
}

func TestSearch_DescriptionFirstInInsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		// Given: the description match is inserted before the title match
		idx := newTestIndex(t, backend,
			Document{Ref: "/b", Description: "a tour of kubernetes"},
			Document{Ref: "/a", Title: "Kubernetes"},
		)

		hits, err := idx.Search(context.Background(), "kubernetes", DefaultWeights)
		require.NoError(t, err)

		// Then: score, not insertion order, decides
		assert.Equal(t, []string{"/a", "/b"}, refs(hits))
	})
}

func TestSearch_PrefixMatching(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend,
			Document{Ref: "/p", Title: "Programming in Go"},
			Document{Ref: "/q", Title: "Cooking pasta"},
		)

		hits, err := idx.Search(context.Background(), "prog", DefaultWeights)
		require.NoError(t, err)
		assert.Equal(t, []string{"/p"}, refs(hits))
	})
}

func TestSearch_TagsMatch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend,
			Document{Ref: "/t", Title: "Notes", Tags: []string{"web-dev", "golang"}},
			Document{Ref: "/u", Title: "Other"},
		)

		hits, err := idx.Search(context.Background(), "golang", DefaultWeights)
		require.NoError(t, err)
		require.Equal(t, []string{"/t"}, refs(hits))
		assert.Equal(t, []string{"web-dev", "golang"}, hits[0].Document.Tags)
	})
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend,
			Document{Ref: "/3", Title: "Gardening"},
			Document{Ref: "/1", Title: "Gardening"},
			Document{Ref: "/2", Title: "Gardening"},
		)

		hits, err := idx.Search(context.Background(), "gardening", DefaultWeights)
		require.NoError(t, err)
		assert.Equal(t, []string{"/3", "/1", "/2"}, refs(hits))
	})
}

func TestSearch_TermsAreORed(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend,
			Document{Ref: "/go", Title: "Go"},
			Document{Ref: "/rust", Title: "Rust"},
			Document{Ref: "/both", Title: "Go and Rust"},
		)

		hits, err := idx.Search(context.Background(), "go rust", DefaultWeights)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"/go", "/rust", "/both"}, refs(hits))
		assert.Equal(t, "/both", hits[0].Ref)
	})
}

func TestSearch_BlankAndStopWordQueries(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend, Document{Ref: "/a", Title: "The Rust Book"})

		for _, q := range []string{"", "   ", "\t\n", "the", "!!!"} {
			hits, err := idx.Search(context.Background(), q, DefaultWeights)
			require.NoError(t, err, "query %q", q)
			assert.Empty(t, hits, "query %q", q)
			assert.NotNil(t, hits, "query %q", q)
		}
	})
}

func TestSearch_ZeroWeightExcludesField(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend,
			Document{Ref: "/body", Title: "Untitled", Body: "zebra crossing"},
		)

		hits, err := idx.Search(context.Background(), "zebra", Weights{Title: 10, Tags: 5, Description: 3})
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = idx.Search(context.Background(), "zebra", DefaultWeights)
		require.NoError(t, err)
		assert.Equal(t, []string{"/body"}, refs(hits))
	})
}

func TestAddDocument_DuplicateRef(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend, Document{Ref: "/a", Title: "First"})

		err := idx.AddDocument(context.Background(), Document{Ref: "/a", Title: "Second"})
		require.Error(t, err)
		assert.True(t, folioerrors.HasCode(err, folioerrors.ErrCodeDuplicateRef))

		// The index is unchanged.
		assert.Equal(t, 1, idx.Len())
		doc, ok := idx.Document("/a")
		require.True(t, ok)
		assert.Equal(t, "First", doc.Title)
	})
}

func TestAddDocument_MissingFieldsBecomeEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend, Document{Ref: "/bare"})

		doc, ok := idx.Document("/bare")
		require.True(t, ok)
		assert.Equal(t, "", doc.Title)
		assert.Equal(t, "", doc.Description)
		assert.Equal(t, []string{}, doc.Tags)

		err := idx.AddDocument(context.Background(), Document{})
		assert.True(t, folioerrors.HasCode(err, folioerrors.ErrCodeInvalidInput))
	})
}

func TestSerializeLoad_RoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		// Given: an index with every field populated
		docs := []Document{
			{Ref: "/a", Title: "Rust Guide", Description: "Ownership explained", Tags: []string{"rust", "guide"}, Body: "borrow checker"},
			{Ref: "/b", Title: "Go Tour", Tags: []string{}},
		}
		idx := newTestIndex(t, backend, docs...)

		// When: serializing and loading it back
		var buf bytes.Buffer
		require.NoError(t, idx.Serialize(&buf))

		loaded, err := Load(&buf)
		require.NoError(t, err)
		defer loaded.Close()

		// Then: every field is recoverable from a hit and the backend is kept
		assert.Equal(t, backend, loaded.Backend())
		assert.Equal(t, idx.Fingerprint(), loaded.Fingerprint())
		assert.Equal(t, 2, loaded.Len())

		hits, err := loaded.Search(context.Background(), "ownership", DefaultWeights)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, docs[0], hits[0].Document)
	})
}

func TestLoadAs_SwitchesBackend(t *testing.T) {
	idx := newTestIndex(t, BackendBleve, Document{Ref: "/a", Title: "Rust Guide"})

	var buf bytes.Buffer
	require.NoError(t, idx.Serialize(&buf))

	loaded, err := LoadAs(&buf, BackendSQLite)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, BackendSQLite, loaded.Backend())
	hits, err := loaded.Search(context.Background(), "rust", DefaultWeights)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, refs(hits))
}

func TestLoad_Corrupt(t *testing.T) {
	idx := newTestIndex(t, BackendBleve, Document{Ref: "/a", Title: "Rust"})
	var buf bytes.Buffer
	require.NoError(t, idx.Serialize(&buf))
	valid := buf.String()

	tampered := strings.Replace(valid, `"Rust"`, `"Go"`, 1)

	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(valid), &snap))
	snap["version"] = 99
	future, err := json.Marshal(snap)
	require.NoError(t, err)

	snap["version"] = SnapshotVersion
	snap["backend"] = "lucene"
	unknown, err := json.Marshal(snap)
	require.NoError(t, err)

	tests := []struct {
		name string
		data string
		code string
	}{
		{"not json", "{nope", folioerrors.ErrCodeCorruptIndex},
		{"truncated", valid[:len(valid)/2], folioerrors.ErrCodeCorruptIndex},
		{"tampered", tampered, folioerrors.ErrCodeCorruptIndex},
		{"future version", string(future), folioerrors.ErrCodeCorruptIndex},
		{"unknown backend", string(unknown), folioerrors.ErrCodeUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, folioerrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestClosedIndex(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx, err := NewIndex(backend)
		require.NoError(t, err)
		require.NoError(t, idx.Close())
		require.NoError(t, idx.Close())

		_, err = idx.Search(context.Background(), "x", DefaultWeights)
		assert.ErrorIs(t, err, ErrIndexClosed)
		assert.ErrorIs(t, idx.AddDocument(context.Background(), Document{Ref: "/x"}), ErrIndexClosed)
		assert.ErrorIs(t, idx.Serialize(&bytes.Buffer{}), ErrIndexClosed)
	})
}

func TestConcurrentSearch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		idx := newTestIndex(t, backend,
			Document{Ref: "/a", Title: "Rust Guide"},
			Document{Ref: "/b", Title: "Go Guide"},
		)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				hits, err := idx.Search(context.Background(), "guide", DefaultWeights)
				assert.NoError(t, err)
				assert.Len(t, hits, 2)
			}()
		}
		wg.Wait()
	})
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendBleve, b)

	b, err = ParseBackend(" SQLite ")
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, b)

	_, err = ParseBackend("lucene")
	assert.True(t, folioerrors.HasCode(err, folioerrors.ErrCodeUnknownBackend))
}
