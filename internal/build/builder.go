// Package build runs one generation: it loads the content tree, groups
// the posts into paginated tag pages and writes the tag page data, the
// tag counts and the search index into the output directory.
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/folio/internal/config"
	"github.com/Aman-CERP/folio/internal/content"
	folioerrors "github.com/Aman-CERP/folio/internal/errors"
	"github.com/Aman-CERP/folio/internal/paginate"
	"github.com/Aman-CERP/folio/internal/store"
	"github.com/Aman-CERP/folio/pkg/indexer"
)

// Step is a phase of a run, reported to the Observer as it starts.
type Step int

const (
	StepLoad Step = iota
	StepPaginate
	StepIndex
	StepWrite
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepLoad:
		return "load"
	case StepPaginate:
		return "paginate"
	case StepIndex:
		return "index"
	case StepWrite:
		return "write"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Observer is told when each step starts.
type Observer func(step Step, detail string)

// Report summarises a finished run.
type Report struct {
	OutputDir string           `json:"output_dir"`
	Items     int              `json:"items"`
	Posts     int              `json:"posts"`
	Keys      int              `json:"keys"`
	Pages     int              `json:"pages"`
	Index     *indexer.Summary `json:"index"`
	Artifacts []string         `json:"artifacts"`
	Duration  time.Duration    `json:"duration"`
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver registers a step observer.
func WithObserver(o Observer) Option {
	return func(b *Builder) {
		b.observer = o
	}
}

// Builder performs generation runs for one site.
type Builder struct {
	root     string
	cfg      *config.Config
	logger   *slog.Logger
	observer Observer
}

// New creates a Builder for the site rooted at root.
func New(root string, cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		root:   root,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OutputDir returns the resolved output directory.
func (b *Builder) OutputDir() string {
	return b.cfg.OutputPath(b.root)
}

// IndexPath returns where the search index is written.
func (b *Builder) IndexPath() string {
	rel := strings.TrimPrefix(b.cfg.Search.IndexPath, "/")
	return filepath.Join(b.OutputDir(), filepath.FromSlash(rel))
}

func (b *Builder) notify(step Step, detail string) {
	if b.observer != nil {
		b.observer(step, detail)
	}
}

// Run performs one generation run. Either every artifact is replaced or,
// on error, none is.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	out := b.OutputDir()

	lock := NewFileLock(out)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, folioerrors.IOError("failed to lock output directory", err)
	}
	if !acquired {
		return nil, folioerrors.New(folioerrors.ErrCodeOutputLocked,
			fmt.Sprintf("output directory %s is locked by another build", out), nil).
			WithDetail("lock", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	b.logger.Info("build_started", slog.String("root", b.root), slog.String("output", out))

	report, err := b.run(ctx, out)
	if err != nil {
		b.logger.Error("build_failed", append(folioerrors.LogAttrs(err),
			slog.Duration("duration", time.Since(start)))...)
		return nil, err
	}

	report.Duration = time.Since(start)
	b.logger.Info("build_completed",
		slog.Int("items", report.Items),
		slog.Int("posts", report.Posts),
		slog.Int("keys", report.Keys),
		slog.Int("pages", report.Pages),
		slog.Int("documents", report.Index.Documents),
		slog.Duration("duration", report.Duration))
	return report, nil
}

func (b *Builder) run(ctx context.Context, out string) (*Report, error) {
	contentDir := b.cfg.ContentPath(b.root)
	b.notify(StepLoad, contentDir)

	loader := &content.Loader{Dir: contentDir, BaseURL: b.cfg.Site.BaseURL, Logger: b.logger}
	items, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	posts := items.Tagged(b.cfg.Site.Collection).Reversed()
	b.notify(StepPaginate, fmt.Sprintf("%d posts", len(posts)))

	keySort, err := paginate.ParseKeySort(b.cfg.Pagination.KeySort)
	if err != nil {
		return nil, err
	}
	res, err := paginate.Paginate(posts, paginate.ByTags(b.cfg.Pagination.ExcludeTags...), paginate.Options{
		PageSize:  b.cfg.Pagination.PageSize,
		KeySort:   keySort,
		Permalink: paginate.TagPermalink(b.cfg.Pagination.TagPrefix),
	})
	if err != nil {
		return nil, err
	}

	backend, err := store.ParseBackend(b.cfg.Search.Backend)
	if err != nil {
		return nil, err
	}
	docs := indexer.FromItems(items)
	b.notify(StepIndex, fmt.Sprintf("%d documents", len(docs)))

	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, folioerrors.IOError("failed to create output directory", err)
	}
	staging, err := os.MkdirTemp(out, ".folio-build-")
	if err != nil {
		return nil, folioerrors.IOError("failed to create staging directory", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	indexPath := b.IndexPath()
	staged := map[string]string{
		filepath.Join(staging, TagPagesFile):             filepath.Join(out, TagPagesFile),
		filepath.Join(staging, TagCountsFile):            filepath.Join(out, TagCountsFile),
		filepath.Join(staging, filepath.Base(indexPath)): indexPath,
	}

	var summary *indexer.Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeJSON(filepath.Join(staging, TagPagesFile), tagPages(res.Pages))
	})
	g.Go(func() error {
		return writeJSON(filepath.Join(staging, TagCountsFile), tagCounts(res))
	})
	g.Go(func() error {
		s, err := indexer.WriteFile(gctx, filepath.Join(staging, filepath.Base(indexPath)), docs,
			indexer.WithBackend(backend),
			indexer.WithBody(b.cfg.Search.IncludeBody),
			indexer.WithLogger(b.logger))
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.notify(StepWrite, out)
	artifacts, err := publish(staged)
	if err != nil {
		return nil, err
	}
	summary.Path = indexPath

	return &Report{
		OutputDir: out,
		Items:     len(items),
		Posts:     len(posts),
		Keys:      len(res.Keys),
		Pages:     len(res.Pages),
		Index:     summary,
		Artifacts: artifacts,
	}, nil
}

// publish moves staged files into place.
func publish(staged map[string]string) ([]string, error) {
	var artifacts []string
	for from, to := range staged {
		if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			return nil, folioerrors.IOError("failed to create artifact directory", err)
		}
		if err := os.Rename(from, to); err != nil {
			return nil, folioerrors.IOError(fmt.Sprintf("failed to publish %s", filepath.Base(to)), err)
		}
		artifacts = append(artifacts, to)
	}
	sort.Strings(artifacts)
	return artifacts, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return folioerrors.InternalError(fmt.Sprintf("failed to encode %s", filepath.Base(path)), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return folioerrors.IOError(fmt.Sprintf("failed to write %s", filepath.Base(path)), err)
	}
	return nil
}
