package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/folio/internal/build"
	"github.com/Aman-CERP/folio/internal/config"
	"github.com/Aman-CERP/folio/internal/dom"
	"github.com/Aman-CERP/folio/internal/output"
	"github.com/Aman-CERP/folio/internal/search"
	"github.com/Aman-CERP/folio/internal/store"
	"github.com/Aman-CERP/folio/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	index   string // URL, site base URL or file path of the index
	backend string
	format  string // "text", "json"
	limit   int
	html    string // page to render results into
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the built search index",
		Long: `Load the search index and run one query against it, the same way the
site's search box does.

By default the index written by 'folio build' is read from the output
directory. --index accepts a file path, the URL of the index or the base
URL of a served site.

With --html the results are rendered into the given page's search form
and the updated page is written to stdout.`,
		Example: `  folio search "rust guide"
  folio search rust --format json
  folio search rust --index http://127.0.0.1:8080/
  folio search rust --html _site/index.html > /tmp/results.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.index, "index", "i", "", "Index location: file path, index URL or site URL")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Override the index backend: bleve, sqlite")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results to print (0 for all)")
	cmd.Flags().StringVar(&opts.html, "html", "", "Render results into this HTML page")

	return cmd
}

// searchResultJSON is the --format json shape.
type searchResultJSON struct {
	Query   string         `json:"query"`
	Heading string         `json:"heading,omitempty"`
	Message string         `json:"message,omitempty"`
	Total   int            `json:"total"`
	Results []search.Entry `json:"results"`
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (supported: text, json)", opts.format)
	}

	root, cfg, err := loadSite()
	if err != nil {
		return err
	}
	fetcher := fetcherFor(root, cfg, opts.index)

	engineOpts := []search.Option{search.WithLogger(slog.Default())}
	if opts.backend != "" {
		b, err := store.ParseBackend(opts.backend)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, search.WithBackend(b))
	}

	slog.Info("search_started", slog.String("query", query))

	if opts.html != "" {
		return searchIntoPage(ctx, cmd.OutOrStdout(), opts.html, query, fetcher, engineOpts)
	}

	host := search.NewRecorder()
	host.SetValue(query)
	engine := search.New(host, fetcher, engineOpts...)
	defer func() { _ = engine.Close() }()

	engine.Start(ctx)
	if err := engine.Wait(ctx); err != nil {
		return err
	}
	engine.Submit()

	snap := host.Snapshot()
	if snap.View == nil {
		return nil
	}
	view := limitView(*snap.View, opts.limit)

	if opts.format == "json" {
		res := searchResultJSON{
			Query:   view.Query,
			Heading: view.Heading,
			Message: view.Message,
			Total:   len(snap.View.Entries),
			Results: view.Entries,
		}
		if res.Results == nil {
			res.Results = []search.Entry{}
		}
		return output.New(cmd.OutOrStdout()).JSON(res)
	}

	return ui.WriteView(cmd.OutOrStdout(), view, ui.GetStyles(ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout())))
}

// searchIntoPage runs the query inside the search form of an HTML page and
// writes the updated page.
func searchIntoPage(ctx context.Context, w io.Writer, path, query string, fetcher search.Fetcher, engineOpts []search.Option) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	page, err := dom.Parse(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	page.SetInputValue(query)
	engine := search.New(page, fetcher, engineOpts...)
	defer func() { _ = engine.Close() }()
	if engine.Disabled() {
		return fmt.Errorf("%s has no search form (need #%s, #%s and #%s)", path, dom.FormID, dom.InputID, dom.ResultsID)
	}

	engine.Start(ctx)
	// A failed load hides the form; the page is still written.
	_ = engine.Wait(ctx)
	engine.Submit()

	return page.Render(w)
}

// fetcherFor resolves the --index flag. An empty location reads the
// artifact from the local output directory.
func fetcherFor(root string, cfg *config.Config, location string) search.Fetcher {
	if location == "" {
		return &search.FileFetcher{Path: build.New(root, cfg).IndexPath()}
	}
	return search.NewFetcher(location, cfg.Search.IndexPath)
}

func limitView(v search.View, limit int) search.View {
	if limit > 0 && len(v.Entries) > limit {
		v.Entries = v.Entries[:limit]
	}
	return v
}
