package indexer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Aman-CERP/folio/internal/content"
	folioerrors "github.com/Aman-CERP/folio/internal/errors"
	"github.com/Aman-CERP/folio/internal/store"
)

type options struct {
	backend     store.Backend
	includeBody bool
	logger      *slog.Logger
}

// Option configures a build.
type Option func(*options)

// WithBackend selects the index backend. Defaults to bleve.
func WithBackend(b store.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBody indexes document bodies. Bodies are dropped by default to keep
// the artifact small.
func WithBody(include bool) Option {
	return func(o *options) {
		o.includeBody = include
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) *options {
	o := &options{backend: store.BackendBleve}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// FromItems maps content items to search documents. Ref is the item URL.
func FromItems(items []content.Item) []store.Document {
	docs := make([]store.Document, 0, len(items))
	for _, item := range items {
		docs = append(docs, store.Document{
			Ref:         item.URL,
			Title:       item.Title,
			Description: item.Description,
			Tags:        content.FilterTags(item.Tags, content.DisplayExcludedTags...),
			Body:        item.Body,
		})
	}
	return docs
}

// Build adds every document to a new index. On error the partial index is
// closed and discarded.
func Build(ctx context.Context, docs []store.Document, opts ...Option) (store.Index, error) {
	o := newOptions(opts)

	idx, err := store.NewIndex(o.backend)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if !o.includeBody {
			doc.Body = ""
		}
		if err := idx.AddDocument(ctx, doc); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to add document %s: %w", doc.Ref, err)
		}
	}

	o.logger.Debug("search_index_built",
		slog.String("backend", string(idx.Backend())),
		slog.Int("documents", idx.Len()),
		slog.Bool("include_body", o.includeBody))

	return idx, nil
}

// Summary describes a written artifact.
type Summary struct {
	Path        string        `json:"path"`
	Backend     store.Backend `json:"backend"`
	Documents   int           `json:"documents"`
	Fingerprint string        `json:"fingerprint"`
	Bytes       int64         `json:"bytes"`
	Duration    time.Duration `json:"duration"`
}

// WriteFile builds an index from docs and writes its snapshot to path.
// The file is written to a temporary sibling and renamed into place.
func WriteFile(ctx context.Context, path string, docs []store.Document, opts ...Option) (*Summary, error) {
	start := time.Now()
	o := newOptions(opts)

	idx, err := Build(ctx, docs, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = idx.Close() }()

	n, err := writeAtomic(path, idx.Serialize)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Path:        path,
		Backend:     idx.Backend(),
		Documents:   idx.Len(),
		Fingerprint: idx.Fingerprint(),
		Bytes:       n,
		Duration:    time.Since(start),
	}

	o.logger.Info("search_index_written",
		slog.String("path", path),
		slog.Int("documents", summary.Documents),
		slog.Int64("bytes", n),
		slog.Duration("duration", summary.Duration))

	return summary, nil
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeAtomic runs write against a temp file next to path, then renames
// it over path. On failure path is left as it was.
func writeAtomic(path string, write func(io.Writer) error) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, folioerrors.New(folioerrors.ErrCodeFilePermission,
			fmt.Sprintf("failed to create %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, folioerrors.New(folioerrors.ErrCodeFilePermission,
			fmt.Sprintf("failed to create temp file in %s", dir), err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	cw := &countingWriter{w: tmp}
	if err := write(cw); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("failed to move index into place: %w", err)
	}
	return cw.n, nil
}
