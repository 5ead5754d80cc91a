package display

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorAccent  = lipgloss.Color("#00D4AA")
	colorSuccess = lipgloss.Color("#00D26A")
	colorWarning = lipgloss.Color("#FFB800")
	colorError   = lipgloss.Color("#FF3838")
	colorMuted   = lipgloss.Color("#6B7280")
)

// styles are bound to one renderer so color detection follows the writer.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	command lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(colorPrimary).
			Padding(0, 1),
		label:   r.NewStyle().Foreground(colorMuted),
		value:   r.NewStyle().Bold(true),
		command: r.NewStyle().Foreground(colorAccent).Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(0, 1),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		warning: r.NewStyle().Foreground(colorWarning),
		failure: r.NewStyle().Foreground(colorError).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted).Italic(true),
		header:  r.NewStyle().Bold(true).Underline(true),
	}
}
