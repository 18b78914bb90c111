package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorBase    = lipgloss.Color("#1D221E")
	colorSurface = lipgloss.Color("#2A332C")
	colorMuted   = lipgloss.Color("#7E8C80")
	colorText    = lipgloss.Color("#D6E0D3")
	colorAccent  = lipgloss.Color("#8FA082")
	colorGreen   = lipgloss.Color("#a6e3a1")
	colorRed     = lipgloss.Color("#f38ba8")
	colorYellow  = lipgloss.Color("#f9e2af")
)

var (
	tabStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorAccent).
			Bold(true).
			Padding(0, 2)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorSurface).
			Bold(true)

	focusedHeaderStyle = lipgloss.NewStyle().
				Foreground(colorBase).
				Background(colorYellow).
				Bold(true)

	rowStyle = lipgloss.NewStyle().
			Foreground(colorText)

	cursorRowStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorAccent)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	warningCellStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorMuted)

	filterChipStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorMuted).
			Padding(0, 1)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true).
			Padding(2, 4)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	hiddenColumnStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Strikethrough(true)
)
