// Package ui provides terminal output for folio: build progress, index
// status and the interactive search browser.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage is a step of a generation run.
type Stage int

const (
	// StageLoading reads the content directory.
	StageLoading Stage = iota
	// StagePaginating groups posts into tag pages.
	StagePaginating
	// StageIndexing builds the search index.
	StageIndexing
	// StageWriting writes the artifacts.
	StageWriting
	// StageComplete means the run finished.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageLoading:
		return "Loading"
	case StagePaginating:
		return "Paginating"
	case StageIndexing:
		return "Indexing"
	case StageWriting:
		return "Writing"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage label for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageLoading:
		return "LOAD"
	case StagePaginating:
		return "PAGE"
	case StageIndexing:
		return "INDEX"
	case StageWriting:
		return "WRITE"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent reports that a stage has started.
type ProgressEvent struct {
	Stage   Stage
	Message string
}

// ErrorEvent reports a failure during a run.
type ErrorEvent struct {
	File   string
	Err    error
	IsWarn bool
}

// BuildStats summarises a finished run.
type BuildStats struct {
	Items      int
	Keys       int
	Pages      int
	Documents  int
	IndexBytes int64
	Backend    string
	Duration   time.Duration
	Errors     int
}

// Renderer displays the progress of a run.
type Renderer interface {
	Start(ctx context.Context) error
	UpdateProgress(event ProgressEvent)
	AddError(event ErrorEvent)
	Complete(stats BuildStats)
	Stop() error
}

// Config configures the UI.
type Config struct {
	Output     io.Writer
	Input      io.Reader
	ForcePlain bool
	NoColor    bool
	SiteDir    string // shown in the header
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithSiteDir sets the directory shown in the header.
func WithSiteDir(dir string) ConfigOption {
	return func(c *Config) {
		c.SiteDir = dir
	}
}

// WithInput sets the keyboard input for interactive programs.
func WithInput(r io.Reader) ConfigOption {
	return func(c *Config) {
		c.Input = r
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	if DetectNoColor() {
		cfg.NoColor = true
	}
	return cfg
}

// Interactive reports whether a TUI can be used with cfg.
func (c Config) Interactive() bool {
	return !c.ForcePlain && IsTTY(c.Output) && !DetectCI()
}

// NewRenderer returns a TUI renderer for interactive terminals and a plain
// text renderer for CI, pipes or when plain output is forced.
func NewRenderer(cfg Config) Renderer {
	if !cfg.Interactive() {
		return NewPlainRenderer(cfg)
	}

	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
