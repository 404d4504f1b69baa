package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Aman-CERP/folio/internal/search"
)

// Browser is an interactive search page in the terminal. It is the
// search.Host for `folio browse`: the text input plays the search input,
// the panel below it the results list.
//
// Debounced searches are delivered to the bubbletea event loop through
// Scheduler, so every host mutation except the load failure happens on
// the program goroutine.
type Browser struct {
	cfg    Config
	styles Styles

	mu         sync.Mutex
	value      string
	view       *search.View
	hidden     bool
	expanded   bool
	live       bool
	formHidden bool
	program    *tea.Program

	// Owned by the program goroutine.
	input   textinput.Model
	spinner spinner.Model
	engine  *search.Engine
	loading bool
	loadErr error
	width   int
}

var _ search.Host = (*Browser)(nil)

// NewBrowser creates a browser for cfg.
func NewBrowser(cfg Config) *Browser {
	in := textinput.New()
	in.Placeholder = "Search posts"
	in.Prompt = "› "
	in.CharLimit = 256
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Browser{
		cfg:     cfg,
		styles:  GetStyles(cfg.NoColor),
		hidden:  true,
		input:   in,
		spinner: s,
		loading: true,
		width:   80,
	}
}

// Run starts the engine and blocks until the user quits.
func (b *Browser) Run(ctx context.Context, engine *search.Engine) error {
	if !IsTTY(b.cfg.Output) {
		return fmt.Errorf("output is not a TTY")
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(b.cfg.Output), tea.WithAltScreen()}
	if b.cfg.Input != nil {
		opts = append(opts, tea.WithInput(b.cfg.Input))
	}

	b.engine = engine
	p := tea.NewProgram(b, opts...)

	b.mu.Lock()
	b.program = p
	b.mu.Unlock()

	engine.Start(ctx)
	_, err := p.Run()

	b.mu.Lock()
	b.program = nil
	b.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run search browser: %w", err)
	}
	return nil
}

// Scheduler returns a search.Scheduler whose tasks run on the program's
// event loop.
func (b *Browser) Scheduler() search.Scheduler {
	return browserScheduler{b: b}
}

type browserScheduler struct {
	b *Browser
}

type taskMsg func()

func (s browserScheduler) AfterFunc(d time.Duration, f func()) search.Timer {
	return time.AfterFunc(d, func() {
		s.b.mu.Lock()
		p := s.b.program
		s.b.mu.Unlock()

		if p == nil {
			f()
			return
		}
		p.Send(taskMsg(f))
	})
}

type loadedMsg struct {
	err error
}

func (b *Browser) waitLoad() tea.Msg {
	return loadedMsg{err: b.engine.Wait(context.Background())}
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, b.spinner.Tick, b.waitLoad)
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return b, tea.Quit
		case tea.KeyEnter:
			b.engine.Submit()
			return b, nil
		}

		var cmd tea.Cmd
		before := b.input.Value()
		b.input, cmd = b.input.Update(msg)
		if b.input.Value() != before {
			b.mu.Lock()
			b.value = b.input.Value()
			b.mu.Unlock()
			b.engine.Input()
		}
		return b, cmd

	case taskMsg:
		msg()
		return b, nil

	case loadedMsg:
		b.loading = false
		b.loadErr = msg.err
		return b, nil

	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.input.Width = max(msg.Width-8, 10)
		return b, nil

	case spinner.TickMsg:
		if !b.loading {
			return b, nil
		}
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

// View implements tea.Model.
func (b *Browser) View() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sections []string
	sections = append(sections, b.styles.Header.Render("folio search"))

	switch {
	case b.formHidden:
		msg := "Search is unavailable."
		if b.loadErr != nil {
			msg = fmt.Sprintf("Search is unavailable: %v", b.loadErr)
		}
		sections = append(sections, b.styles.Error.Render(msg))
	case b.loading:
		sections = append(sections, b.input.View(), b.spinner.View()+b.styles.Label.Render(" loading index"))
	default:
		sections = append(sections, b.input.View())
	}

	if !b.hidden && b.view != nil {
		sections = append(sections, b.renderPanel(*b.view))
	}

	sections = append(sections, b.styles.Dim.Render("enter search • esc quit"))
	return strings.Join(sections, "\n\n") + "\n"
}

func (b *Browser) renderPanel(v search.View) string {
	var lines []string
	if len(v.Entries) == 0 {
		lines = append(lines, b.styles.Label.Render(v.Message))
	} else {
		lines = append(lines, b.styles.Active.Render(v.Heading), "")
		for _, e := range v.Entries {
			lines = append(lines, b.styles.Title.Render(e.Title)+"  "+b.styles.URL.Render(e.URL))
			if e.Description != "" {
				lines = append(lines, "  "+b.styles.Description.Render(e.Description))
			}
		}
	}

	width := b.width - 4
	if width < 40 {
		width = 40
	}
	return b.styles.Panel.Width(width).Render(strings.Join(lines, "\n"))
}

// Attached implements search.Host. The terminal always has all three parts.
func (b *Browser) Attached() bool { return true }

// InputValue implements search.Host.
func (b *Browser) InputValue() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// ClearResults implements search.Host.
func (b *Browser) ClearResults() {
	b.mu.Lock()
	b.view = nil
	b.mu.Unlock()
}

// RenderResults implements search.Host.
func (b *Browser) RenderResults(v search.View) {
	b.mu.Lock()
	b.view = &v
	b.mu.Unlock()
}

// SetResultsHidden implements search.Host.
func (b *Browser) SetResultsHidden(hidden bool) {
	b.mu.Lock()
	b.hidden = hidden
	b.mu.Unlock()
}

// SetExpanded implements search.Host.
func (b *Browser) SetExpanded(expanded bool) {
	b.mu.Lock()
	b.expanded = expanded
	b.mu.Unlock()
}

// MarkLive implements search.Host.
func (b *Browser) MarkLive() {
	b.mu.Lock()
	b.live = true
	b.mu.Unlock()
}

// HideForm implements search.Host.
func (b *Browser) HideForm() {
	b.mu.Lock()
	b.formHidden = true
	b.mu.Unlock()
}
