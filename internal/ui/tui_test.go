package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewTUIRenderer_ErrorsForNonTTY(t *testing.T) {
	r, err := NewTUIRenderer(NewConfig(&bytes.Buffer{}))

	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestBuildModel_StageIndicators(t *testing.T) {
	// Given: a model in the indexing stage
	m := newBuildModel("/site")
	m.styles = NoColorStyles()
	m.Update(progressMsg{Stage: StageIndexing, Message: "12 documents"})

	// When: rendering
	view := m.View()

	// Then: every stage and the message appear
	for _, s := range []string{"Loading", "Paginating", "Indexing", "Writing", "12 documents", "/site"} {
		assert.Contains(t, view, s)
	}
	assert.Contains(t, view, "● Loading")
	assert.Contains(t, view, "○ Writing")
}

func TestBuildModel_Errors(t *testing.T) {
	m := newBuildModel("")
	m.styles = NoColorStyles()

	m.Update(errorMsg{File: "a.md", Err: errors.New("broken")})

	assert.Contains(t, m.View(), "✗ a.md: broken")
}

func TestBuildModel_CompleteQuits(t *testing.T) {
	// Given: a running model
	m := newBuildModel("")
	m.styles = NoColorStyles()

	// When: the run completes
	_, cmd := m.Update(completeMsg{Items: 4, Keys: 2, Pages: 3, Documents: 4, Duration: 20 * time.Millisecond})

	// Then: the summary is shown and the program quits
	assert.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	view := m.View()
	assert.Contains(t, view, "Build complete")
	assert.Contains(t, view, "20ms")
}

func TestBuildModel_CtrlC(t *testing.T) {
	m := newBuildModel("")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.NotNil(t, cmd)
	assert.Equal(t, "Cancelled.\n", m.View())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{3 * time.Second, "3s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}
