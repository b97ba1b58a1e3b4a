package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// renderMarkdown renders markdown content using glamour.
func renderMarkdown(width int, content string) string {
	if content == "" {
		return ""
	}

	// A fixed style avoids slow terminal background detection.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	out, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimSpace(out)
}

// Colors
var (
	colorPrimary   = lipgloss.Color("#BB7B52") // memex brown
	colorSecondary = lipgloss.Color("#A8D8B9")
	colorMuted     = lipgloss.Color("#666666")
	colorHighlight = lipgloss.Color("#FFFBE6")
	colorDanger    = lipgloss.Color("#E06C75")
	colorBorder    = lipgloss.Color("#444444")
	colorTag       = lipgloss.Color("#E5C07B")
)

// Layout styles
var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	brandOpenStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	brandMemexStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	navItemStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	navActiveStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 1)

	navBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	leftPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	rightPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 1)
)

// List item styles
var (
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorTag)

	activeTagStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Background(colorTag).
			Bold(true)
)

// Help bar
var helpBarStyle = lipgloss.NewStyle().MarginTop(1)

// Status messages
var (
	successStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger)
)

// Misc
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	controlLabelStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true)
)

// Constants for layout
const (
	leftPaneWidthFraction = 0.70
	minLeftPaneWidth      = 30
	minRightPaneWidth     = 18
	defaultTerminalWidth  = 100
	defaultTerminalHeight = 30
	entryCardHeight       = 2
)
