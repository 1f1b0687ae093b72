package tui

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	cellW        = 11 // width of each layer column in characters
	labelVisualW = 7  // visual width of qubit label area
	opNameW      = 5  // width of operation symbol inside box
)

// Lipgloss styles used across the TUI.
var (
	circuitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(1)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bb9af7")).
			Padding(1)

	controlsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9ece6a")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	cursorBoxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff9e64")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))

	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	opStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#73daca"))

	noiseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f7768e"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e"))

	menuBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff9e64")).
			Padding(0, 1)

	menuSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ff9e64"))

	menuNormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5"))
)
