package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

// Fetcher retrieves the serialized index.
type Fetcher interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// HTTPFetcher GETs the index from a site.
type HTTPFetcher struct {
	// BaseURL is the site root, e.g. http://127.0.0.1:8080.
	BaseURL string
	// Path is the index path relative to the site root.
	Path string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// URL returns the full index URL.
func (f *HTTPFetcher) URL() string {
	if f.Path == "" {
		return f.BaseURL
	}
	return strings.TrimSuffix(f.BaseURL, "/") + "/" + strings.TrimPrefix(f.Path, "/")
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context) (io.ReadCloser, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(), nil)
	if err != nil {
		return nil, folioerrors.New(folioerrors.ErrCodeIndexFetch, "invalid search index URL", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, folioerrors.New(folioerrors.ErrCodeIndexFetch,
			fmt.Sprintf("failed to fetch %s", f.URL()), err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, folioerrors.New(folioerrors.ErrCodeIndexFetch,
			fmt.Sprintf("failed to fetch %s: %s", f.URL(), resp.Status), nil).
			WithDetail("status", resp.Status)
	}
	return resp.Body, nil
}

// FileFetcher reads the index from disk.
type FileFetcher struct {
	Path string
}

// Fetch implements Fetcher.
func (f *FileFetcher) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, folioerrors.New(folioerrors.ErrCodeIndexFetch,
			fmt.Sprintf("failed to open %s", f.Path), err).
			WithSuggestion("run `folio build` first")
	}
	return file, nil
}

// NewFetcher returns an HTTPFetcher for http(s) locations and a
// FileFetcher for everything else.
func NewFetcher(location, indexPath string) Fetcher {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if strings.HasSuffix(location, ".json") {
			return &HTTPFetcher{BaseURL: location}
		}
		return &HTTPFetcher{BaseURL: location, Path: indexPath}
	}
	return &FileFetcher{Path: location}
}
