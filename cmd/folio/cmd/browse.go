package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/folio/internal/search"
	"github.com/Aman-CERP/folio/internal/store"
	"github.com/Aman-CERP/folio/internal/ui"
)

func newBrowseCmd() *cobra.Command {
	var (
		index   string
		backend string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search the site interactively",
		Long: `Open a terminal search box backed by the built index. Results update
as you type, after the configured debounce delay; Enter searches
immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			root, cfg, err := loadSite()
			if err != nil {
				return err
			}

			browser := ui.NewBrowser(ui.NewConfig(cmd.OutOrStdout(),
				ui.WithSiteDir(root),
				ui.WithInput(cmd.InOrStdin())))

			opts := []search.Option{
				search.WithScheduler(browser.Scheduler()),
				search.WithDebounce(cfg.SearchDebounce()),
				search.WithLogger(slog.Default()),
			}
			if backend != "" {
				b, err := store.ParseBackend(backend)
				if err != nil {
					return err
				}
				opts = append(opts, search.WithBackend(b))
			}

			engine := search.New(browser, fetcherFor(root, cfg, index), opts...)
			defer func() { _ = engine.Close() }()

			return browser.Run(ctx, engine)
		},
	}

	cmd.Flags().StringVarP(&index, "index", "i", "", "Index location: file path, index URL or site URL")
	cmd.Flags().StringVar(&backend, "backend", "", "Override the index backend: bleve, sqlite")

	return cmd
}
