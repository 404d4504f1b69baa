package ui

import "github.com/charmbracelet/lipgloss"

// Palette. One accent color, grays for everything else.
const (
	ColorAccent   = "37"  // teal
	ColorAccentLo = "30"  // dimmed teal for inactive stages
	ColorWhite    = "255" // headings
	ColorGray     = "245" // URLs, labels
	ColorDarkGray = "238" // borders
	ColorRed      = "196"
	ColorYellow   = "220"
)

// Styles holds the lipgloss styles used by every renderer.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Stage   lipgloss.Style
	Active  lipgloss.Style
	Label   lipgloss.Style

	Title       lipgloss.Style // result title
	URL         lipgloss.Style // result link
	Description lipgloss.Style
	Panel       lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Stage:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentLo)),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),

		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		URL:         lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(ColorAccent)),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)).
			Padding(0, 1),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:      plain,
		Success:     plain,
		Warning:     plain,
		Error:       plain,
		Dim:         plain,
		Stage:       plain,
		Active:      plain,
		Label:       plain,
		Title:       plain,
		URL:         plain,
		Description: plain,
		Panel:       plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
