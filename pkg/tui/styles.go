package tui

import "github.com/charmbracelet/lipgloss"

// theme holds the colors that depend on the color mode.
type theme struct {
	dark       bool
	background string
	label      string
	edgeLink   string
	edgeTree   string
	edgeFaint  string
}

var (
	darkTheme = theme{
		dark:       true,
		background: "#18181b",
		label:      "#e4e4e7",
		edgeLink:   "#71717a",
		edgeTree:   "#6366f1",
		edgeFaint:  "#27272a",
	}
	lightTheme = theme{
		dark:       false,
		background: "#ffffff",
		label:      "#27272a",
		edgeLink:   "#a1a1aa",
		edgeTree:   "#4f46e5",
		edgeFaint:  "#f4f4f5",
	}
)

func themeFor(dark bool) theme {
	if dark {
		return darkTheme
	}
	return lightTheme
}

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Bold(true)

	tooltipTitleStyle   = lipgloss.NewStyle().Bold(true)
	tooltipClusterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Italic(true)
)

// Node glyphs by radius.
const (
	glyphDefault = '•'
	glyphMatched = '●'
	glyphHovered = '◉'

	glyphLink      = '·'
	glyphHierarchy = '∙'
)
