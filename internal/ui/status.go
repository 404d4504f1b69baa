package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo describes a built search index artifact.
type StatusInfo struct {
	Path        string    `json:"path"`
	Backend     string    `json:"backend"`
	Documents   int       `json:"documents"`
	Fingerprint string    `json:"fingerprint"`
	Size        int64     `json:"size"`
	BuiltAt     time.Time `json:"built_at"`
	State       string    `json:"state"` // "ready", "missing", "error"
	Error       string    `json:"error,omitempty"`
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Search index: "+info.Path))
	_, _ = fmt.Fprintf(r.out, "  State:       %s\n", r.renderState(info.State))
	if info.Error != "" {
		_, _ = fmt.Fprintf(r.out, "  Error:       %s\n", r.styles.Error.Render(info.Error))
		return nil
	}
	if info.State != "ready" {
		return nil
	}

	_, _ = fmt.Fprintf(r.out, "  Backend:     %s\n", info.Backend)
	_, _ = fmt.Fprintf(r.out, "  Documents:   %d\n", info.Documents)
	_, _ = fmt.Fprintf(r.out, "  Size:        %s\n", FormatBytes(info.Size))
	if !info.BuiltAt.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Built:       %s\n", formatTime(info.BuiltAt))
	}
	_, err := fmt.Fprintf(r.out, "  Fingerprint: %s\n", r.styles.Dim.Render(info.Fingerprint))
	return err
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func (r *StatusRenderer) renderState(state string) string {
	switch state {
	case "ready":
		return r.styles.Success.Render(state)
	case "missing":
		return r.styles.Warning.Render(state)
	case "error":
		return r.styles.Error.Render(state)
	default:
		return state
	}
}

// formatTime formats a time relative to now.
func formatTime(t time.Time) string {
	diff := time.Since(t)

	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
