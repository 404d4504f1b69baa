package mcp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
	"github.com/Aman-CERP/folio/internal/store"
)

// DefaultCacheSize is the number of loaded indexes kept in memory.
const DefaultCacheSize = 4

// IndexInfo describes the index artifact currently being served.
type IndexInfo struct {
	Path        string
	Backend     store.Backend
	Documents   int
	Fingerprint string
	Size        int64
	ModTime     time.Time
}

// stamp identifies one version of the artifact on disk.
type stamp struct {
	size    int64
	modTime time.Time
}

// IndexCache loads the index artifact on demand and keeps loaded indexes
// keyed by their content fingerprint. The artifact is re-read only when its
// size or modification time changes; a rewrite with identical content
// reuses the cached index.
type IndexCache struct {
	path    string
	backend store.Backend
	logger  *slog.Logger

	mu      sync.Mutex
	indexes *lru.Cache[string, store.Index]
	stamp   stamp
	current string
	closed  bool
}

// NewIndexCache creates a cache for the artifact at path. An empty backend
// uses the one recorded in the artifact.
func NewIndexCache(path string, backend store.Backend, size int, logger *slog.Logger) (*IndexCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &IndexCache{path: path, backend: backend, logger: logger}

	indexes, err := lru.NewWithEvict(size, func(fingerprint string, idx store.Index) {
		if err := idx.Close(); err != nil {
			c.logger.Warn("index_close_failed",
				slog.String("fingerprint", fingerprint),
				slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index cache: %w", err)
	}
	c.indexes = indexes
	return c, nil
}

// With runs fn against the current index. The index stays open until fn
// returns.
func (c *IndexCache) With(ctx context.Context, fn func(store.Index, IndexInfo) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return store.ErrIndexClosed
	}

	idx, info, err := c.acquireLocked()
	if err != nil {
		return err
	}
	return fn(idx, info)
}

// Len returns the number of indexes held in memory.
func (c *IndexCache) Len() int {
	return c.indexes.Len()
}

func (c *IndexCache) acquireLocked() (store.Index, IndexInfo, error) {
	st, err := os.Stat(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, IndexInfo{}, folioerrors.New(folioerrors.ErrCodeFileNotFound, "index artifact not found", err).
			WithDetail("path", c.path).
			WithSuggestion("Run 'folio build' first.")
	}
	if err != nil {
		return nil, IndexInfo{}, folioerrors.IOError("failed to stat index artifact", err).
			WithDetail("path", c.path)
	}

	cur := stamp{size: st.Size(), modTime: st.ModTime()}
	if cur == c.stamp && c.current != "" {
		if idx, ok := c.indexes.Get(c.current); ok {
			return idx, c.info(idx, cur), nil
		}
	}

	idx, err := c.load()
	if err != nil {
		return nil, IndexInfo{}, err
	}

	fingerprint := idx.Fingerprint()
	if cached, ok := c.indexes.Get(fingerprint); ok {
		_ = idx.Close()
		idx = cached
		c.logger.Debug("index_cache_hit", slog.String("fingerprint", fingerprint))
	} else {
		c.indexes.Add(fingerprint, idx)
		c.logger.Info("index_loaded",
			slog.String("path", c.path),
			slog.String("fingerprint", fingerprint),
			slog.Int("documents", idx.Len()),
			slog.String("backend", string(idx.Backend())))
	}

	c.stamp = cur
	c.current = fingerprint
	return idx, c.info(idx, cur), nil
}

func (c *IndexCache) load() (store.Index, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, folioerrors.IOError("failed to open index artifact", err).
			WithDetail("path", c.path)
	}
	defer func() { _ = f.Close() }()

	idx, err := store.LoadAs(f, c.backend)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func (c *IndexCache) info(idx store.Index, st stamp) IndexInfo {
	return IndexInfo{
		Path:        c.path,
		Backend:     idx.Backend(),
		Documents:   idx.Len(),
		Fingerprint: idx.Fingerprint(),
		Size:        st.size,
		ModTime:     st.modTime,
	}
}

// Close releases every cached index. It is safe to call more than once.
func (c *IndexCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.indexes.Purge()
	return nil
}
