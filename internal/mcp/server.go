package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/folio/internal/search"
	"github.com/Aman-CERP/folio/internal/store"
	"github.com/Aman-CERP/folio/pkg/version"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "folio"

// Server is the MCP server for folio. It answers queries against the
// search index artifact produced by `folio build`.
type Server struct {
	mcp    *mcp.Server
	cache  *IndexCache
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	backend   store.Backend
	cacheSize int
	logger    *slog.Logger
}

// WithBackend overrides the backend recorded in the artifact.
func WithBackend(b store.Backend) Option {
	return func(o *serverOptions) { o.backend = b }
}

// WithCacheSize sets how many loaded indexes are kept in memory.
func WithCacheSize(n int) Option {
	return func(o *serverOptions) { o.cacheSize = n }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// NewServer creates an MCP server for the index artifact at indexPath.
// The artifact is read lazily, so the server starts even before the first
// build.
func NewServer(indexPath string, opts ...Option) (*Server, error) {
	if indexPath == "" {
		return nil, errors.New("index path is required")
	}

	o := serverOptions{cacheSize: DefaultCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := NewIndexCache(indexPath, o.backend, o.cacheSize, o.logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cache:  cache,
		logger: o.logger,
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_site",
		Description: "Search the site's pages by title, tags, description and text. Returns ranked pages with their URL, title and description.",
	}, s.searchSiteHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch one indexed page by its URL, as returned by search_site.",
	}, s.getDocumentHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_status",
		Description: "Report which search index is being served: document count, content fingerprint, backend and artifact size.",
	}, s.indexStatusHandler)

	s.logger.Debug("mcp_tools_registered", slog.Int("count", 3))
}

func (s *Server) searchSiteHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchSiteInput) (
	*mcp.CallToolResult,
	SearchSiteOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchSiteOutput{}, NewInvalidParamsError("query cannot be empty or whitespace only")
	}
	limit := clampLimit(input.Limit, DefaultLimit, 1, MaxLimit)

	start := time.Now()
	requestID := generateRequestID()

	var hits []store.Hit
	err := s.cache.With(ctx, func(idx store.Index, _ IndexInfo) error {
		var err error
		hits, err = idx.Search(ctx, input.Query, store.DefaultWeights)
		return err
	})
	if err != nil {
		s.logger.Error("search_site_failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, SearchSiteOutput{}, MapError(err)
	}

	view := search.NewView(input.Query, hits)
	out := SearchSiteOutput{
		Query:   input.Query,
		Heading: view.Heading,
		Message: view.Message,
		Total:   len(hits),
		Results: make([]HitOutput, 0, min(limit, len(hits))),
	}
	for _, h := range hits {
		if len(out.Results) == limit {
			break
		}
		out.Results = append(out.Results, HitOutput{
			Ref:         h.Ref,
			Title:       h.Document.Title,
			Description: h.Document.Description,
			Tags:        h.Document.Tags,
			Score:       h.Score,
		})
	}

	s.logger.Info("search_site_completed",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("total", out.Total),
		slog.Int("returned", len(out.Results)),
		slog.Duration("duration", time.Since(start)))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatResults(out)}},
	}, out, nil
}

func (s *Server) getDocumentHandler(ctx context.Context, _ *mcp.CallToolRequest, input GetDocumentInput) (
	*mcp.CallToolResult,
	GetDocumentOutput,
	error,
) {
	if strings.TrimSpace(input.Ref) == "" {
		return nil, GetDocumentOutput{}, NewInvalidParamsError("ref parameter is required")
	}

	var doc store.Document
	err := s.cache.With(ctx, func(idx store.Index, _ IndexInfo) error {
		d, ok := idx.Document(input.Ref)
		if !ok {
			return ErrDocumentNotFound
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, GetDocumentOutput{}, MapError(err)
	}

	return nil, GetDocumentOutput{
		Ref:         doc.Ref,
		Title:       doc.Title,
		Description: doc.Description,
		Tags:        doc.Tags,
		Body:        doc.Body,
	}, nil
}

func (s *Server) indexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	IndexStatusOutput,
	error,
) {
	var info IndexInfo
	err := s.cache.With(ctx, func(_ store.Index, i IndexInfo) error {
		info = i
		return nil
	})
	if err != nil {
		return nil, IndexStatusOutput{}, MapError(err)
	}

	return nil, IndexStatusOutput{
		Path:        info.Path,
		Backend:     string(info.Backend),
		Documents:   info.Documents,
		Fingerprint: info.Fingerprint,
		SizeBytes:   info.Size,
		ModifiedAt:  info.ModTime.UTC().Format(time.RFC3339),
	}, nil
}

// Serve runs the server over stdio until ctx is canceled or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp_server_started", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("mcp_server_stopped")
	return nil
}

// Close releases the cached indexes.
func (s *Server) Close() error {
	return s.cache.Close()
}

func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
