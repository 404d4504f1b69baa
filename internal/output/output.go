// Package output formats short CLI messages: status lines, key/value
// blocks and JSON documents.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Icons used by the status helpers.
const (
	IconSuccess = "✓"
	IconWarning = "!"
	IconError   = "✗"
	IconInfo    = "•"
)

// Writer provides formatted output for CLI commands.
type Writer struct {
	out     io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	key     lipgloss.Style
}

// New creates a Writer without color.
func New(out io.Writer) *Writer {
	plain := lipgloss.NewStyle()
	return &Writer{out: out, success: plain, warning: plain, err: plain, key: plain}
}

// NewColor creates a Writer that colors icons and keys.
func NewColor(out io.Writer) *Writer {
	return &Writer{
		out:     out,
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("37")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Status prints a message with an icon. Write errors are ignored for
// console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.success.Render(IconSuccess), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.warning.Render(IconWarning), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.err.Render(IconError), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// KeyValue prints aligned "key: value" lines in the given order.
func (w *Writer) KeyValue(pairs ...[2]string) {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		pad := strings.Repeat(" ", width-len(p[0]))
		_, _ = fmt.Fprintf(w.out, "  %s%s  %s\n", w.key.Render(p[0]+":"), pad, p[1])
	}
}

// Code prints a block of text indented by two spaces.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// JSON writes v as indented JSON.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
