package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/folio/internal/build"
	"github.com/Aman-CERP/folio/internal/store"
	"github.com/Aman-CERP/folio/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the built search index",
		Long: `Display information about the search index in the output directory:
  - Backend and number of indexed documents
  - Artifact size and build time
  - Content fingerprint`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, cfg, err := loadSite()
			if err != nil {
				return err
			}

			info := collectStatus(build.New(root, cfg).IndexPath())
			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()))
			if jsonOutput {
				return renderer.RenderJSON(info)
			}
			return renderer.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// collectStatus inspects the artifact at path. Problems are reported in
// the returned info rather than as errors.
func collectStatus(path string) ui.StatusInfo {
	info := ui.StatusInfo{Path: path}

	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		info.State = "missing"
		return info
	}
	if err != nil {
		info.State = "error"
		info.Error = err.Error()
		return info
	}
	info.Size = st.Size()
	info.BuiltAt = st.ModTime()

	f, err := os.Open(path)
	if err != nil {
		info.State = "error"
		info.Error = err.Error()
		return info
	}
	defer func() { _ = f.Close() }()

	idx, err := store.Load(f)
	if err != nil {
		info.State = "error"
		info.Error = err.Error()
		return info
	}
	defer func() { _ = idx.Close() }()

	info.State = "ready"
	info.Backend = string(idx.Backend())
	info.Documents = idx.Len()
	info.Fingerprint = idx.Fingerprint()
	return info
}
