package tui

import "github.com/charmbracelet/lipgloss"

var (
	forestGreen = lipgloss.Color("#a6e3a1")
	bark        = lipgloss.Color("#fab387")
	sky         = lipgloss.Color("#74c7ec")
	mist        = lipgloss.Color("#a6adc8")
	border      = lipgloss.Color("#45475a")

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Foreground(sky).Bold(true)
	clockStyle  = lipgloss.NewStyle().Foreground(forestGreen).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(bark).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(mist)
	noticeStyle = lipgloss.NewStyle().Foreground(bark)
)
