package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUIRenderer shows run progress with bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *buildModel
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

var _ Renderer = (*TUIRenderer)(nil)

// NewTUIRenderer creates a TUI renderer.
// Returns an error if the output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	model := newBuildModel(cfg.SiteDir)
	model.styles = GetStyles(cfg.NoColor)

	return &TUIRenderer{
		cfg:   cfg,
		model: model,
		done:  make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	ctx, r.cancel = context.WithCancel(ctx)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.send(progressMsg(event))
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.send(errorMsg(event))
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats BuildStats) {
	r.send(completeMsg(stats))
}

func (r *TUIRenderer) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()

	if p == nil {
		return nil
	}

	p.Quit()

	// Wait with timeout to avoid hanging on an unresponsive terminal.
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

type progressMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg BuildStats

// buildModel is the bubbletea model for run progress.
type buildModel struct {
	stage    Stage
	message  string
	errors   []ErrorEvent
	complete bool
	stats    BuildStats
	quitting bool
	width    int
	spinner  spinner.Model
	styles   Styles
	siteDir  string
}

func newBuildModel(siteDir string) *buildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	return &buildModel{
		spinner: s,
		styles:  DefaultStyles(),
		width:   80,
		siteDir: siteDir,
	}
}

// Init implements tea.Model.
func (m *buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case progressMsg:
		m.stage = msg.Stage
		m.message = msg.Message

	case errorMsg:
		m.errors = append(m.errors, ErrorEvent(msg))

	case completeMsg:
		m.stage = StageComplete
		m.complete = true
		m.stats = BuildStats(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *buildModel) View() string {
	if m.quitting {
		return "Cancelled.\n"
	}
	if m.complete {
		return m.renderComplete()
	}

	lines := []string{m.renderStages()}
	if m.message != "" {
		lines = append(lines, m.styles.Label.Render(m.message))
	}
	for _, e := range m.errors {
		lines = append(lines, m.renderError(e))
	}

	title := "folio build"
	if m.siteDir != "" {
		title += " • " + m.siteDir
	}
	return m.styles.Header.Render(title) + "\n" + m.styles.Panel.Width(m.contentWidth()).Render(strings.Join(lines, "\n")) + "\n"
}

func (m *buildModel) contentWidth() int {
	if m.width-4 < 40 {
		return 40
	}
	return m.width - 4
}

// renderStages renders the stage indicators.
func (m *buildModel) renderStages() string {
	stages := []Stage{StageLoading, StagePaginating, StageIndexing, StageWriting}

	parts := make([]string, 0, len(stages))
	for _, s := range stages {
		var icon string
		var style lipgloss.Style

		switch {
		case s < m.stage:
			icon = "●"
			style = m.styles.Success
		case s == m.stage:
			icon = m.spinner.View()
			style = m.styles.Active
		default:
			icon = "○"
			style = m.styles.Dim
		}
		parts = append(parts, style.Render(icon+" "+s.String()))
	}

	return strings.Join(parts, m.styles.Dim.Render(" → "))
}

func (m *buildModel) renderError(e ErrorEvent) string {
	style, mark := m.styles.Error, "✗"
	if e.IsWarn {
		style, mark = m.styles.Warning, "⚠"
	}
	if e.File != "" {
		return style.Render(fmt.Sprintf("%s %s: %v", mark, e.File, e.Err))
	}
	return style.Render(fmt.Sprintf("%s %v", mark, e.Err))
}

func (m *buildModel) renderComplete() string {
	label := m.styles.Label.Render
	value := func(v any) string { return m.styles.Active.Render(fmt.Sprint(v)) }

	lines := []string{
		m.styles.Success.Render("✓ Build complete"),
		"",
		fmt.Sprintf("%s      %s", label("Posts:"), value(m.stats.Items)),
		fmt.Sprintf("%s       %s", label("Tags:"), value(m.stats.Keys)),
		fmt.Sprintf("%s      %s", label("Pages:"), value(m.stats.Pages)),
		fmt.Sprintf("%s    %s", label("Indexed:"), value(m.stats.Documents)),
	}
	if m.stats.IndexBytes > 0 {
		lines = append(lines, fmt.Sprintf("%s      %s", label("Index:"),
			value(FormatBytes(m.stats.IndexBytes)+" ("+m.stats.Backend+")")))
	}
	lines = append(lines, fmt.Sprintf("%s   %s", label("Duration:"), value(formatDuration(m.stats.Duration))))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccent)).
		Padding(1, 2).
		Width(m.contentWidth())

	return panel.Render(strings.Join(lines, "\n")) + "\n"
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
